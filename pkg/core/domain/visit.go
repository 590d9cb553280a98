package domain

import "time"

// Visit is one recorded click on a short link
type Visit struct {
	ID        int64     `json:"id"`
	LinkID    int64     `json:"link_id"`
	Referer   string    `json:"referer"`
	UserAgent string    `json:"user_agent"`
	IPHash    string    `json:"ip_hash"` // Anonymized IP
	CreatedAt time.Time `json:"created_at"`
}

// UserAgentRow is the user agent column of a single visit. Valid is false
// when the visit was stored without one.
type UserAgentRow struct {
	UserAgent string
	Valid     bool
}
