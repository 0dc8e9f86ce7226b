package usecase

import (
	"context"
	"fmt"

	xlogger "PulseLab/pkg/logger"
	"PulseLab/pkg/queue"
)

// SessionSealedPayload is the queue message enqueued when a session seals.
type SessionSealedPayload struct {
	Participant string `json:"participant"`
}

// ReportJob warms the HRV report cache after a session seals so the first
// dashboard request does not pay the full compute.
type ReportJob struct {
	reports *ReportService
	logger  *xlogger.Logger
}

func NewReportJob(reports *ReportService, logger *xlogger.Logger) *ReportJob {
	return &ReportJob{reports: reports, logger: logger}
}

func (j *ReportJob) Name() string { return "hrv_report_precompute" }

func (j *ReportJob) Type() string { return "session.sealed" }

func (j *ReportJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[SessionSealedPayload](payload)
	if err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}

	// A new session supersedes whatever was cached for the participant.
	if err := j.reports.Precompute(ctx, p.Participant); err != nil {
		return err
	}
	j.logger.Info("hrv report precomputed", xlogger.String("participant", p.Participant))
	return nil
}
