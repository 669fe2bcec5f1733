package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ReportEvent is one consent update forwarded to the analytics API.
type ReportEvent struct {
	Visitor string
	Action  string
	Delta   map[string]string
}

// ConsentReport is a row in the consent_reports table.
type ConsentReport struct {
	ID        string    `db:"id"`
	Visitor   string    `db:"visitor"`
	Action    string    `db:"action"`
	Payload   string    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// Delta decodes the stored payload.
func (r *ConsentReport) Delta() (map[string]string, error) {
	var d map[string]string
	if err := json.Unmarshal([]byte(r.Payload), &d); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", r.ID, err)
	}
	return d, nil
}

// ReportStore keeps an audit trail of reported consent changes.
type ReportStore struct {
	db *sqlx.DB
}

// NewReportStore creates a new ReportStore.
func NewReportStore(db *sqlx.DB) *ReportStore {
	return &ReportStore{db: db}
}

func (s *ReportStore) q(query string) string { return s.db.Rebind(query) }

// Record inserts a report row.
func (s *ReportStore) Record(ctx context.Context, e ReportEvent) error {
	payload, err := json.Marshal(e.Delta)
	if err != nil {
		return fmt.Errorf("encode delta: %w", err)
	}

	// visitor is VARCHAR(64).
	visitor := e.Visitor
	if len(visitor) > 64 {
		visitor = visitor[:64]
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO consent_reports (id, visitor, action, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), uuid.New().String(), visitor, e.Action, string(payload), time.Now().UTC())
	return err
}

// ListByVisitor returns a visitor's reports, newest first.
func (s *ReportStore) ListByVisitor(ctx context.Context, visitor string, limit int) ([]*ConsentReport, error) {
	if limit <= 0 {
		limit = 50
	}
	var reports []*ConsentReport
	err := s.db.SelectContext(ctx, &reports, s.q(`
		SELECT id, visitor, action, payload, created_at FROM consent_reports
		WHERE visitor = ? ORDER BY created_at DESC LIMIT ?
	`), visitor, limit)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// CountByAction returns how many reports were recorded per action.
func (s *ReportStore) CountByAction(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Action string `db:"action"`
		Count  int64  `db:"n"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT action, COUNT(*) AS n FROM consent_reports GROUP BY action
	`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Action] = r.Count
	}
	return out, nil
}
