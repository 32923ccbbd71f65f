package models

import "time"

// SearchResult is a single similarity search hit.
type SearchResult struct {
	ContentID   string         `json:"content_id"`
	Title       string         `json:"title"`
	ContentType string         `json:"content_type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Preview     string         `json:"preview"`
	Similarity  float64        `json:"similarity"`
}

// SearchResponse is the response for a similarity search.
// TotalResults counts every document that cleared the threshold, before the
// limit truncation; len(Results) is at most the request limit.
type SearchResponse struct {
	Query          string          `json:"query"`
	Results        []*SearchResult `json:"results"`
	TotalResults   int             `json:"total_results"`
	SearchedAt     time.Time       `json:"searched_at"`
	QueryEmbedding []float32       `json:"query_embedding,omitempty"`
	Model          string          `json:"model"`
}

// QueryCount is one entry of the top-queries leaderboard.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// TrendPoint is the search volume of one UTC calendar day.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AnalyticsReport aggregates search history over a rolling window.
type AnalyticsReport struct {
	TotalSearches  int           `json:"total_searches"`
	AverageResults float64       `json:"average_results"`
	TopQueries     []QueryCount  `json:"top_queries"`
	SearchTrends   []TrendPoint  `json:"search_trends"`
	TimeRangeDays  int           `json:"time_range_days"`
	GeneratedAt    time.Time     `json:"generated_at"`
}
