package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"PulseLab/internal/domain/models"
	"PulseLab/internal/domain/repository"
)

// ClickHouseRecorder implements Recorder for ClickHouse. One row per
// sample, keyed by participant and signal type; markers land in their own
// table. Inserts happen in the order the pipeline hands samples over,
// which is what keeps stored sequences analyzable.
type ClickHouseRecorder struct {
	db           *sql.DB
	samplesTable string
	markersTable string
}

// NewClickHouseRecorder creates ClickHouse-backed session storage.
func NewClickHouseRecorder(db *sql.DB, samplesTable, markersTable string) repository.Recorder {
	return &ClickHouseRecorder{db: db, samplesTable: samplesTable, markersTable: markersTable}
}

func (r *ClickHouseRecorder) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (r *ClickHouseRecorder) Record(ctx context.Context, participant string, sig models.SignalType, s models.TimestampedSample) error {
	q := fmt.Sprintf("INSERT INTO %s (participant, signal, ts, value) VALUES (?, ?, ?, ?)", r.samplesTable)
	_, err := r.db.ExecContext(ctx, q, participant, string(sig), s.Timestamp, s.Sample.Value())
	return err
}

func (r *ClickHouseRecorder) RecordBatch(ctx context.Context, participant string, sig models.SignalType, batch []models.TimestampedSample) error {
	if len(batch) == 0 {
		return nil
	}
	// Multi-row VALUES insert to keep one round-trip per notification
	// batch.
	values := make([]string, 0, len(batch))
	args := make([]interface{}, 0, len(batch)*4)
	for _, s := range batch {
		values = append(values, "(?, ?, ?, ?)")
		args = append(args, participant, string(sig), s.Timestamp, s.Sample.Value())
	}
	q := fmt.Sprintf("INSERT INTO %s (participant, signal, ts, value) VALUES %s", r.samplesTable, strings.Join(values, ","))
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *ClickHouseRecorder) RecordMarker(ctx context.Context, participant string, m models.MarkedTimestamp) error {
	q := fmt.Sprintf("INSERT INTO %s (participant, ts, label) VALUES (?, ?, ?)", r.markersTable)
	_, err := r.db.ExecContext(ctx, q, participant, m.Timestamp, m.Label)
	return err
}

func (r *ClickHouseRecorder) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *ClickHouseRecorder) Close() error {
	return nil // Managed by pkg
}
