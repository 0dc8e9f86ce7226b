package usecase

import (
	"context"
	"fmt"
	"time"

	"PulseLab/internal/domain/models"
	domrepo "PulseLab/internal/domain/repository"
	svcmetrics "PulseLab/internal/service/metrics"
	"PulseLab/internal/services/hrv"
	pkgcache "PulseLab/pkg/cache"
)

// ReportService builds HRV reports over sealed sessions: it loads the RR
// sequence and marker list from the session store, runs the statistics
// engine, and caches the result. A report is derived data and is always
// recomputable from storage.
type ReportService struct {
	store  domrepo.SessionStore
	engine *hrv.Engine
	cache  pkgcache.Service
	ttl    time.Duration
}

// NewReportService creates a new ReportService instance. cache may be nil.
func NewReportService(store domrepo.SessionStore, engine *hrv.Engine, cache pkgcache.Service, ttl time.Duration) *ReportService {
	return &ReportService{store: store, engine: engine, cache: cache, ttl: ttl}
}

// Report computes (or returns the cached) HRV report for a participant's
// recorded session. Zero from/to means the whole recording.
func (r *ReportService) Report(ctx context.Context, participant string, clean bool, from, to time.Time) (models.HRVReport, error) {
	key := pkgcache.GenerateKeyWithParams("hrv", participant, clean, from.UnixMilli(), to.UnixMilli())
	if r.cache != nil {
		var cached models.HRVReport
		if err := r.cache.Get(ctx, key, &cached); err == nil {
			svcmetrics.ReportCache.WithLabelValues("hit").Inc()
			return cached, nil
		}
		svcmetrics.ReportCache.WithLabelValues("miss").Inc()
	}

	rr, err := r.store.RRIntervals(ctx, participant, from, to)
	if err != nil {
		return models.HRVReport{}, fmt.Errorf("load rr intervals: %w", err)
	}
	markers, err := r.store.Markers(ctx, participant)
	if err != nil {
		return models.HRVReport{}, fmt.Errorf("load markers: %w", err)
	}

	report := r.engine.Analyze(participant, rr, markers, hrv.Options{Clean: clean})

	if r.cache != nil {
		_ = r.cache.Set(ctx, key, report, r.ttl)
	}
	return report, nil
}

// Participants lists every participant with recorded data.
func (r *ReportService) Participants(ctx context.Context) ([]string, error) {
	return r.store.Participants(ctx)
}

// Precompute refreshes both whole-recording report variants for a
// participant. A short-lived lock deduplicates concurrent seal events so
// only one worker pays the compute.
func (r *ReportService) Precompute(ctx context.Context, participant string) error {
	if r.cache != nil {
		lockKey := pkgcache.GenerateKeyWithParams("hrv_lock", participant)
		if ok, err := r.cache.TryLock(ctx, lockKey, time.Minute); err == nil {
			if !ok {
				return nil
			}
			defer func() { _ = r.cache.Unlock(ctx, lockKey) }()
		}
	}

	r.Invalidate(ctx, participant)
	var whole time.Time
	for _, clean := range []bool{false, true} {
		if _, err := r.Report(ctx, participant, clean, whole, whole); err != nil {
			return fmt.Errorf("precompute report (clean=%v): %w", clean, err)
		}
	}
	return nil
}

// Invalidate drops every cached report for a participant, ranged or not,
// typically after a new session seals.
func (r *ReportService) Invalidate(ctx context.Context, participant string) {
	if r.cache == nil {
		return
	}
	pattern := pkgcache.BuildPattern(pkgcache.GenerateKeyWithParams("hrv", participant) + ":")
	_ = r.cache.DeleteByPattern(ctx, pattern)
}
