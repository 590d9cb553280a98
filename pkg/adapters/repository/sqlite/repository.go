package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

// visitTimeLayout is how visits.created_at is stored. Range filters and day
// buckets rely on it sorting lexically.
const visitTimeLayout = "2006-01-02 15:04:05"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		original_url TEXT NOT NULL,
		short_code TEXT NOT NULL UNIQUE,
		title TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_links_short_code ON links(short_code);

	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		link_id INTEGER NOT NULL,
		referer TEXT,
		user_agent TEXT,
		ip_hash TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY(link_id) REFERENCES links(id)
	);
	CREATE INDEX IF NOT EXISTS idx_visits_link_id_created_at ON visits(link_id, created_at);
	`
	_, err := db.Exec(query)
	return err
}

func (r *SQLiteRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (original_url, short_code, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, link.OriginalURL, link.ShortCode, link.Title, link.CreatedAt, link.UpdatedAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *SQLiteRepository) GetByShortCode(ctx context.Context, code string) (*domain.Link, error) {
	query := `SELECT id, original_url, short_code, title, created_at, updated_at
			  FROM links WHERE short_code = ? AND deleted_at IS NULL`

	var link domain.Link
	var title sql.NullString
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&link.ID, &link.OriginalURL, &link.ShortCode, &title, &link.CreatedAt, &link.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	link.Title = title.String
	return &link, nil
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	query := `SELECT id, original_url, short_code, title, created_at, updated_at, deleted_at FROM links ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var l domain.Link
		var title sql.NullString
		var deletedAt sql.NullTime
		if err := rows.Scan(&l.ID, &l.OriginalURL, &l.ShortCode, &title, &l.CreatedAt, &l.UpdatedAt, &deletedAt); err != nil {
			return nil, err
		}
		l.Title = title.String
		if deletedAt.Valid {
			l.DeletedAt = &deletedAt.Time
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SQLiteRepository) RecordVisit(ctx context.Context, visit *domain.Visit) error {
	query := `INSERT INTO visits (link_id, referer, user_agent, ip_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, visit.LinkID, visit.Referer, visit.UserAgent, visit.IPHash, visit.CreatedAt.UTC().Format(visitTimeLayout))
	if err != nil {
		return err
	}
	visit.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) CountVisits(ctx context.Context, shortCode string) (int64, error) {
	query := `SELECT COUNT(*) FROM visits v JOIN links l ON l.id = v.link_id WHERE l.short_code = ?`

	var count int64
	err := r.db.QueryRowContext(ctx, query, shortCode).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) CountVisitsByDay(ctx context.Context, shortCode, from, to string) (map[string]int64, error) {
	query := `
		SELECT strftime('%Y-%m-%d', v.created_at) AS date, COUNT(*)
		FROM visits v JOIN links l ON l.id = v.link_id
		WHERE l.short_code = ? AND v.created_at BETWEEN ? AND ?
		GROUP BY date`

	rows, err := r.db.QueryContext(ctx, query, shortCode, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var date string
		var count int64
		if err := rows.Scan(&date, &count); err != nil {
			return nil, err
		}
		counts[date] = count
	}
	return counts, rows.Err()
}

func (r *SQLiteRepository) ListUserAgents(ctx context.Context, shortCode string) ([]domain.UserAgentRow, error) {
	query := `SELECT v.user_agent FROM visits v JOIN links l ON l.id = v.link_id WHERE l.short_code = ?`

	rows, err := r.db.QueryContext(ctx, query, shortCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.UserAgentRow
	for rows.Next() {
		var ua sql.NullString
		if err := rows.Scan(&ua); err != nil {
			return nil, err
		}
		agents = append(agents, domain.UserAgentRow{UserAgent: ua.String, Valid: ua.Valid})
	}
	return agents, rows.Err()
}

// Ensure interface compliance
var _ ports.LinkRepository = (*SQLiteRepository)(nil)
