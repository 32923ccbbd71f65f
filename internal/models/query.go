package models

import "fmt"

// Search defaults applied by Validate.
const (
	DefaultSearchLimit     = 10
	MaxSearchLimit         = 100
	DefaultThreshold       = 0.7
	DefaultUserID          = "anonymous"
	DefaultAnalyticsWindow = 7
)

// SearchQuery represents a similarity search request.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	// Threshold is the minimum similarity (exclusive) for a result to be
	// returned. Nil means the default; an explicit 0 keeps every positive match.
	Threshold   *float64 `json:"threshold,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
}

// SearchDefaults are the fallback values applied to a query's unset fields.
// Operators tune them through the search config section.
type SearchDefaults struct {
	Limit     int
	MaxLimit  int
	Threshold float64
}

// StandardSearchDefaults returns the built-in search defaults.
func StandardSearchDefaults() SearchDefaults {
	return SearchDefaults{
		Limit:     DefaultSearchLimit,
		MaxLimit:  MaxSearchLimit,
		Threshold: DefaultThreshold,
	}
}

// Validate checks the query fields. Returns an error if the query text is
// empty or an explicit threshold is out of range. Defaulting is separate
// (ApplyDefaults) so callers can validate before the effective defaults are
// known.
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Threshold != nil && (*q.Threshold < -1 || *q.Threshold > 1) {
		return fmt.Errorf("threshold must be within [-1, 1], got %v", *q.Threshold)
	}
	return nil
}

// ApplyDefaults fills unset fields from d and caps the limit.
func (q *SearchQuery) ApplyDefaults(d SearchDefaults) {
	if q.Limit <= 0 {
		q.Limit = d.Limit
	}
	if q.Limit > d.MaxLimit {
		q.Limit = d.MaxLimit
	}
	if q.Threshold == nil {
		t := d.Threshold
		q.Threshold = &t
	}
	if q.UserID == "" {
		q.UserID = DefaultUserID
	}
}

// AnalyticsQuery selects the rolling window for an analytics report.
type AnalyticsQuery struct {
	// TimeRangeDays is the window size in days. Nil means the configured
	// default; an explicit 0 yields an empty window.
	TimeRangeDays *int `json:"time_range_days,omitempty"`
}

// Days returns the effective window size, using fallback when unset.
func (q AnalyticsQuery) Days(fallback int) int {
	if q.TimeRangeDays == nil {
		return fallback
	}
	if *q.TimeRangeDays < 0 {
		return 0
	}
	return *q.TimeRangeDays
}
