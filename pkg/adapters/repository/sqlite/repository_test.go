package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbURL := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	repo, err := NewSQLiteRepository(dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createLink(t *testing.T, repo *SQLiteRepository, code string) *domain.Link {
	t.Helper()
	now := time.Now().UTC()
	link := &domain.Link{OriginalURL: "https://example.com/" + code, ShortCode: code, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(context.Background(), link))
	return link
}

func recordAt(t *testing.T, repo *SQLiteRepository, link *domain.Link, at, userAgent string) {
	t.Helper()
	ts, err := time.Parse(visitTimeLayout, at)
	require.NoError(t, err)
	require.NoError(t, repo.RecordVisit(context.Background(), &domain.Visit{
		LinkID:    link.ID,
		UserAgent: userAgent,
		CreatedAt: ts,
	}))
}

func TestGetByShortCode(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	created := createLink(t, repo, "abc")

	link, err := repo.GetByShortCode(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, created.ID, link.ID)
	assert.Equal(t, "https://example.com/abc", link.OriginalURL)

	link, err = repo.GetByShortCode(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, link)
}

func TestGetByShortCode_SoftDeleted(t *testing.T) {
	repo := newTestRepository(t)
	createLink(t, repo, "gone")

	_, err := repo.db.Exec(`UPDATE links SET deleted_at = CURRENT_TIMESTAMP WHERE short_code = ?`, "gone")
	require.NoError(t, err)

	link, err := repo.GetByShortCode(context.Background(), "gone")
	require.NoError(t, err)
	assert.Nil(t, link)
}

func TestClickLogQueries(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	abc := createLink(t, repo, "abc")
	other := createLink(t, repo, "other")

	recordAt(t, repo, abc, "2023-12-31 23:59:59", "ua-1")
	recordAt(t, repo, abc, "2024-01-01 00:00:00", "ua-2")
	recordAt(t, repo, abc, "2024-01-01 13:30:00", "ua-2")
	recordAt(t, repo, abc, "2024-01-03 23:59:59", "")
	recordAt(t, repo, abc, "2024-01-04 00:00:00", "ua-3")
	recordAt(t, repo, other, "2024-01-02 12:00:00", "ua-x")

	_, err := repo.db.Exec(`INSERT INTO visits (link_id, created_at) VALUES (?, ?)`, abc.ID, "2024-01-02 08:00:00")
	require.NoError(t, err)

	total, err := repo.CountVisits(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)

	perDay, err := repo.CountVisitsByDay(ctx, "abc", "2024-01-01 00:00:00", "2024-01-03 23:59:59")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"2024-01-01": 2,
		"2024-01-02": 1,
		"2024-01-03": 1,
	}, perDay)

	agents, err := repo.ListUserAgents(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, agents, 6)

	var missing, empty int
	for _, a := range agents {
		switch {
		case !a.Valid:
			missing++
		case a.UserAgent == "":
			empty++
		}
	}
	assert.Equal(t, 1, missing)
	assert.Equal(t, 1, empty)
}

func TestClickLogQueries_UnknownCode(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	total, err := repo.CountVisits(ctx, "nope")
	require.NoError(t, err)
	assert.Zero(t, total)

	perDay, err := repo.CountVisitsByDay(ctx, "nope", "2024-01-01 00:00:00", "2024-01-01 23:59:59")
	require.NoError(t, err)
	assert.Empty(t, perDay)

	agents, err := repo.ListUserAgents(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestDump(t *testing.T) {
	repo := newTestRepository(t)
	createLink(t, repo, "one")
	createLink(t, repo, "two")

	links, err := repo.Dump(context.Background())
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "one", links[0].ShortCode)
	assert.Equal(t, "two", links[1].ShortCode)
}
