// Package analytics records search history and derives aggregate statistics
// over a rolling window.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/contentarch/semstore/internal/models"
	"github.com/contentarch/semstore/internal/storage"
)

// TopQueryLimit bounds the top-queries leaderboard.
const TopQueryLimit = 10

// Ledger appends one record per executed search and reports aggregates.
type Ledger struct {
	storage storage.Storage
	logger  *zap.Logger
	now     func() time.Time
	window  int
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithClock overrides the ledger's clock. Used by tests.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithWindow sets the default reporting window in days for queries that do
// not specify one.
func WithWindow(days int) LedgerOption {
	return func(l *Ledger) {
		if days > 0 {
			l.window = days
		}
	}
}

// NewLedger creates a ledger over the given storage.
func NewLedger(st storage.Storage, logger *zap.Logger, opts ...LedgerOption) *Ledger {
	l := &Ledger{storage: st, logger: logger, now: time.Now, window: models.DefaultAnalyticsWindow}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends a history record for an executed search. It is best-effort:
// a recording failure is logged and never surfaces into the search path.
func (l *Ledger) Record(ctx context.Context, query *models.SearchQuery, resultCount int, model string) {
	threshold := 0.0
	if query.Threshold != nil {
		threshold = *query.Threshold
	}
	rec := &models.SearchHistoryRecord{
		ID:          uuid.New().String(),
		Query:       query.Query,
		UserID:      query.UserID,
		RecordedAt:  l.now().UTC(),
		ResultCount: resultCount,
		Threshold:   threshold,
		ContentType: query.ContentType,
		Model:       model,
	}
	if err := l.storage.AppendSearch(ctx, rec); err != nil {
		l.logger.Warn("failed to record search history",
			zap.String("query", rec.Query),
			zap.Error(err),
		)
	}
}

// Report aggregates history records within the rolling window: total volume,
// mean result count, top queries, and per-day trends.
func (l *Ledger) Report(ctx context.Context, query models.AnalyticsQuery) (*models.AnalyticsReport, error) {
	days := query.Days(l.window)
	now := l.now().UTC()
	cutoff := now.AddDate(0, 0, -days)
	records, err := l.storage.ListSearchesSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	report := &models.AnalyticsReport{
		TopQueries:    []models.QueryCount{},
		SearchTrends:  []models.TrendPoint{},
		TimeRangeDays: days,
		GeneratedAt:   now,
	}
	report.TotalSearches = len(records)
	if len(records) == 0 {
		return report, nil
	}

	var totalResults int
	queryCounts := make(map[string]int)
	queryOrder := make([]string, 0)
	dayCounts := make(map[string]int)
	for _, rec := range records {
		totalResults += rec.ResultCount
		if _, seen := queryCounts[rec.Query]; !seen {
			queryOrder = append(queryOrder, rec.Query)
		}
		queryCounts[rec.Query]++
		dayCounts[rec.RecordedAt.UTC().Format("2006-01-02")]++
	}
	report.AverageResults = float64(totalResults) / float64(len(records))

	// Ties on count keep first-seen order; the stable sort preserves it.
	top := make([]models.QueryCount, 0, len(queryOrder))
	for _, q := range queryOrder {
		top = append(top, models.QueryCount{Query: q, Count: queryCounts[q]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > TopQueryLimit {
		top = top[:TopQueryLimit]
	}
	report.TopQueries = top

	trends := make([]models.TrendPoint, 0, len(dayCounts))
	for day, count := range dayCounts {
		trends = append(trends, models.TrendPoint{Date: day, Count: count})
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Date < trends[j].Date })
	report.SearchTrends = trends

	return report, nil
}
