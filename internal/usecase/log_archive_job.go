package usecase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	applogger "PulseLab/pkg/logger"
	"PulseLab/pkg/queue"
)

// LogArchiveJob persists flushed aggregated-log batches to ClickHouse so
// repeated pipeline errors stay queryable after the process restarts.
type LogArchiveJob struct {
	db    *sql.DB
	table string
}

// NewLogArchiveJob creates the archive job writing to table.
func NewLogArchiveJob(db *sql.DB, table string) *LogArchiveJob {
	return &LogArchiveJob{db: db, table: table}
}

func (j *LogArchiveJob) Name() string { return "log_archive" }

// Type matches the topic the logger's collector publishes on.
func (j *LogArchiveJob) Type() string { return "logs.aggregated" }

func (j *LogArchiveJob) Handle(ctx context.Context, payload interface{}) error {
	batch, err := queue.ParsePayload[[]applogger.AggregatedLogEntry](payload)
	if err != nil {
		return fmt.Errorf("log archive payload: %w", err)
	}
	if len(*batch) == 0 {
		return nil
	}

	values := make([]string, 0, len(*batch))
	args := make([]interface{}, 0, len(*batch)*6)
	for _, e := range *batch {
		fields, _ := json.Marshal(e.Fields)
		values = append(values, "(?, ?, ?, ?, ?, ?)")
		args = append(args, e.LastSeen, e.Level, e.Message, e.Caller, e.Count, string(fields))
	}
	q := fmt.Sprintf("INSERT INTO %s (ts, level, message, caller, count, fields) VALUES %s",
		j.table, strings.Join(values, ","))
	if _, err := j.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("archive logs: %w", err)
	}
	return nil
}
