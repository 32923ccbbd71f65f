package models

import "testing"

func TestSearchQuery_ApplyDefaults(t *testing.T) {
	q := SearchQuery{Query: "smart mattress"}
	q.ApplyDefaults(StandardSearchDefaults())
	if q.Limit != DefaultSearchLimit {
		t.Errorf("Limit=%d, want %d", q.Limit, DefaultSearchLimit)
	}
	if q.Threshold == nil || *q.Threshold != DefaultThreshold {
		t.Errorf("Threshold=%v, want %v", q.Threshold, DefaultThreshold)
	}
	if q.UserID != DefaultUserID {
		t.Errorf("UserID=%q, want %q", q.UserID, DefaultUserID)
	}
}

func TestSearchQuery_ApplyDefaultsConfigured(t *testing.T) {
	d := SearchDefaults{Limit: 25, MaxLimit: 50, Threshold: 0.2}
	q := SearchQuery{Query: "x"}
	q.ApplyDefaults(d)
	if q.Limit != 25 {
		t.Errorf("Limit=%d, want 25", q.Limit)
	}
	if q.Threshold == nil || *q.Threshold != 0.2 {
		t.Errorf("Threshold=%v, want 0.2", q.Threshold)
	}

	q = SearchQuery{Query: "x", Limit: 5000}
	q.ApplyDefaults(d)
	if q.Limit != 50 {
		t.Errorf("Limit=%d, want capped at 50", q.Limit)
	}
}

func TestSearchQuery_ApplyDefaultsKeepsExplicitZeroThreshold(t *testing.T) {
	zero := 0.0
	q := SearchQuery{Query: "x", Threshold: &zero}
	q.ApplyDefaults(StandardSearchDefaults())
	if *q.Threshold != 0 {
		t.Errorf("explicit zero threshold was overwritten: %v", *q.Threshold)
	}
}

func TestSearchQuery_ValidateEmptyQuery(t *testing.T) {
	q := SearchQuery{}
	if err := q.Validate(); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestSearchQuery_ValidateThresholdRange(t *testing.T) {
	bad := 1.5
	q := SearchQuery{Query: "x", Threshold: &bad}
	if err := q.Validate(); err == nil {
		t.Error("expected error for out-of-range threshold")
	}
}

func TestSearchQuery_ValidateLeavesFieldsUnset(t *testing.T) {
	q := SearchQuery{Query: "x"}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.Threshold != nil || q.Limit != 0 {
		t.Errorf("Validate applied defaults: %+v", q)
	}
}

func TestAnalyticsQuery_Days(t *testing.T) {
	if d := (AnalyticsQuery{}).Days(30); d != 30 {
		t.Errorf("fallback Days=%d, want 30", d)
	}
	zero := 0
	if d := (AnalyticsQuery{TimeRangeDays: &zero}).Days(7); d != 0 {
		t.Errorf("explicit zero Days=%d, want 0", d)
	}
	neg := -3
	if d := (AnalyticsQuery{TimeRangeDays: &neg}).Days(7); d != 0 {
		t.Errorf("negative Days=%d, want 0", d)
	}
	five := 5
	if d := (AnalyticsQuery{TimeRangeDays: &five}).Days(7); d != 5 {
		t.Errorf("explicit Days=%d, want 5", d)
	}
}
