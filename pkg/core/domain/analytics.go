package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

// DateLayout is the only accepted calendar date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// UnknownCategory labels a user agent dimension that could not be classified.
const UnknownCategory = "Unknown"

// Param flags a request parameter the caller supplied.
type Param uint8

const (
	ParamDate Param = 1 << iota
	ParamDateEnd
	ParamShortURL
)

// AnalyticsRequest holds the parameters of a single analytics call.
// An absent DateEnd means the same day as DateStart.
type AnalyticsRequest struct {
	ShortCode string `json:"shorturl"`
	DateStart string `json:"date"`
	DateEnd   string `json:"date_end,omitempty"`

	// Supplied marks parameters that were sent, even with an empty value.
	// A non-empty field always counts as supplied.
	Supplied Param `json:"-"`
}

// Has reports whether p was supplied.
func (r AnalyticsRequest) Has(p Param) bool {
	if r.Supplied&p != 0 {
		return true
	}
	switch p {
	case ParamDate:
		return r.DateStart != ""
	case ParamDateEnd:
		return r.DateEnd != ""
	case ParamShortURL:
		return r.ShortCode != ""
	}
	return false
}

// DailyClick is the click count of one calendar day
type DailyClick struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// DailyCounts is a chronological day -> clicks histogram. It encodes as a
// JSON object whose keys keep the slice order.
type DailyCounts []DailyClick

// Sum returns the total of all days.
func (d DailyCounts) Sum() int64 {
	var total int64
	for _, dc := range d {
		total += dc.Count
	}
	return total
}

func (d DailyCounts) MarshalJSON() ([]byte, error) {
	pairs := make([]pair, len(d))
	for i, dc := range d {
		pairs[i] = pair{key: dc.Date, value: dc.Count}
	}
	return marshalPairs(pairs)
}

// CategoryCount is the number of visits sharing one label
type CategoryCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// CategoryTally counts labels in first-seen order until Sort is called.
type CategoryTally struct {
	entries []CategoryCount
	index   map[string]int
}

func NewCategoryTally() *CategoryTally {
	return &CategoryTally{index: make(map[string]int)}
}

// Add increments the count for label.
func (t *CategoryTally) Add(label string) {
	if i, ok := t.index[label]; ok {
		t.entries[i].Count++
		return
	}
	t.index[label] = len(t.entries)
	t.entries = append(t.entries, CategoryCount{Label: label, Count: 1})
}

// Sort orders the entries by descending count. Ties keep first-seen order.
func (t *CategoryTally) Sort() {
	sort.SliceStable(t.entries, func(i, j int) bool {
		return t.entries[i].Count > t.entries[j].Count
	})
	for i, e := range t.entries {
		t.index[e.Label] = i
	}
}

// Count returns the count recorded for label.
func (t *CategoryTally) Count(label string) int64 {
	if i, ok := t.index[label]; ok {
		return t.entries[i].Count
	}
	return 0
}

// Entries returns a copy of the entries in their current order.
func (t *CategoryTally) Entries() []CategoryCount {
	out := make([]CategoryCount, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *CategoryTally) Len() int {
	return len(t.entries)
}

func (t *CategoryTally) MarshalJSON() ([]byte, error) {
	pairs := make([]pair, len(t.entries))
	for i, e := range t.entries {
		pairs[i] = pair{key: e.Label, value: e.Count}
	}
	return marshalPairs(pairs)
}

// AnalyticsResult is the computed click statistics for one short link.
// TotalClicks ignores the requested range; RangeClicks is the sum of DailyClicks.
type AnalyticsResult struct {
	TotalClicks      int64          `json:"total_clicks"`
	RangeClicks      int64          `json:"range_clicks"`
	DailyClicks      DailyCounts    `json:"daily_clicks"`
	ClicksByDevice   *CategoryTally `json:"clicks_by_device,omitempty"`
	ClicksByBrowser  *CategoryTally `json:"clicks_by_browser,omitempty"`
	ClicksByPlatform *CategoryTally `json:"clicks_by_platform,omitempty"`
}

// AnalyticsResponse is the envelope returned to API callers
type AnalyticsResponse struct {
	StatusCode int              `json:"statusCode"`
	Message    string           `json:"message"`
	Stats      *AnalyticsResult `json:"stats,omitempty"`
}

type pair struct {
	key   string
	value int64
}

func marshalPairs(pairs []pair) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(p.value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
