package metrics_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nutrijournal/internal/database"
	"nutrijournal/internal/metrics"
)

func newTestStore(t *testing.T) *metrics.Store {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return metrics.NewStore(db.SQL)
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, op := range []string{"add_product", "remove_item", "set_targets"} {
		m := metrics.MutationMetric{
			Operation: op,
			Date:      "2024-03-01",
			Duration:  time.Duration(i+1) * 5 * time.Millisecond,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Record(ctx, m); err != nil {
			t.Fatalf("Record(%s) failed: %v", op, err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(recent))
	}
	if recent[0].Operation != "set_targets" || recent[1].Operation != "remove_item" {
		t.Errorf("expected newest first, got %q then %q", recent[0].Operation, recent[1].Operation)
	}
	if recent[0].Duration != 15*time.Millisecond {
		t.Errorf("duration = %v, want 15ms", recent[0].Duration)
	}
	if recent[0].Date != "2024-03-01" {
		t.Errorf("date = %q", recent[0].Date)
	}
}

func TestRecentEmpty(t *testing.T) {
	store := newTestStore(t)

	recent, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("expected no metrics, got %d", len(recent))
	}
}
