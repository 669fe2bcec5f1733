package store_test

import (
	"context"
	"testing"

	"github.com/joestump/sitekit/internal/store"
	"github.com/joestump/sitekit/internal/testutil"
)

func TestReportStore_RecordAndList(t *testing.T) {
	rs := store.NewReportStore(testutil.NewTestDB(t))
	ctx := context.Background()

	err := rs.Record(ctx, store.ReportEvent{
		Visitor: "visitor-1",
		Action:  "update",
		Delta:   map[string]string{"ad_storage": "denied", "analytics_storage": "granted"},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	reports, err := rs.ListByVisitor(ctx, "visitor-1", 10)
	if err != nil {
		t.Fatalf("ListByVisitor: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("len = %d, want 1", len(reports))
	}
	if reports[0].ID == "" {
		t.Error("expected non-empty ID")
	}

	delta, err := reports[0].Delta()
	if err != nil {
		t.Fatalf("Delta: %v", err)
	}
	if delta["analytics_storage"] != "granted" {
		t.Errorf("analytics_storage = %q, want %q", delta["analytics_storage"], "granted")
	}
}

func TestReportStore_ListByVisitor_Empty(t *testing.T) {
	rs := store.NewReportStore(testutil.NewTestDB(t))

	reports, err := rs.ListByVisitor(context.Background(), "nobody", 0)
	if err != nil {
		t.Fatalf("ListByVisitor: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("len = %d, want 0", len(reports))
	}
}

func TestReportStore_CountByAction(t *testing.T) {
	rs := store.NewReportStore(testutil.NewTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := rs.Record(ctx, store.ReportEvent{Visitor: "v", Action: "update", Delta: map[string]string{"x": "granted"}}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	counts, err := rs.CountByAction(ctx)
	if err != nil {
		t.Fatalf("CountByAction: %v", err)
	}
	if counts["update"] != 3 {
		t.Errorf("update = %d, want 3", counts["update"])
	}
}
