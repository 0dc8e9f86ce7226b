package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PulseLab/internal/domain/models"
	domrepo "PulseLab/internal/domain/repository"
	pkgch "PulseLab/pkg/clickhouse"
	applogger "PulseLab/pkg/logger"
)

// CHSessionStore implements SessionStore backed by ClickHouse. It serves
// the analysis side: reading sealed sessions back in timestamp order.
type CHSessionStore struct {
	db           *sql.DB
	samplesTable string
	markersTable string
	l            *applogger.Logger
}

func NewCHSessionStore(ch *pkgch.Client, samplesTable, markersTable string) *CHSessionStore {
	return &CHSessionStore{db: ch.DB(), samplesTable: samplesTable, markersTable: markersTable}
}

// SetLogger injects a structured logger.
func (s *CHSessionStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSessionStore) RRIntervals(ctx context.Context, participant string, from, to time.Time) ([]models.TimestampedSample, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT ts, value
        FROM %s
        WHERE participant = ? AND signal = ?
    `, s.samplesTable)
	args := []interface{}{participant, string(models.SignalRRInterval)}
	if !from.IsZero() {
		q += " AND ts >= ?"
		args = append(args, from)
	}
	if !to.IsZero() {
		q += " AND ts < ?"
		args = append(args, to)
	}
	q += " ORDER BY ts ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse rr_intervals query error",
				applogger.String("participant", participant),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rr intervals: %w", err)
	}
	defer rows.Close()

	out := make([]models.TimestampedSample, 0, 1024)
	for rows.Next() {
		var (
			ts time.Time
			v  float64
		)
		if err := rows.Scan(&ts, &v); err != nil {
			return nil, fmt.Errorf("scan rr interval: %w", err)
		}
		out = append(out, models.TimestampedSample{
			Sample:    models.Sample{Kind: models.KindRR, IntervalMS: v},
			Timestamp: ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse rr_intervals ok",
			applogger.String("participant", participant),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHSessionStore) Markers(ctx context.Context, participant string) ([]models.MarkedTimestamp, error) {
	q := fmt.Sprintf(`
        SELECT ts, label
        FROM %s
        WHERE participant = ?
        ORDER BY ts ASC
    `, s.markersTable)
	rows, err := s.db.QueryContext(ctx, q, participant)
	if err != nil {
		return nil, fmt.Errorf("markers: %w", err)
	}
	defer rows.Close()

	var out []models.MarkedTimestamp
	for rows.Next() {
		var m models.MarkedTimestamp
		if err := rows.Scan(&m.Timestamp, &m.Label); err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *CHSessionStore) Participants(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT participant FROM %s ORDER BY participant", s.samplesTable)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("participants: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ domrepo.SessionStore = (*CHSessionStore)(nil)
