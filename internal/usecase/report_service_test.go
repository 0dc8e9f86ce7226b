package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"PulseLab/internal/domain/models"
	svcmetrics "PulseLab/internal/service/metrics"
	"PulseLab/internal/services/hrv"
	pkgcache "PulseLab/pkg/cache"
)

type fakeStore struct {
	rr      []models.TimestampedSample
	markers []models.MarkedTimestamp
	loads   int
}

func (f *fakeStore) RRIntervals(_ context.Context, _ string, _, _ time.Time) ([]models.TimestampedSample, error) {
	f.loads++
	return f.rr, nil
}

func (f *fakeStore) Markers(context.Context, string) ([]models.MarkedTimestamp, error) {
	return f.markers, nil
}

func (f *fakeStore) Participants(context.Context) ([]string, error) {
	return []string{"p01"}, nil
}

func TestReportCacheHitSkipsStore(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{rr: []models.TimestampedSample{
		rrAt(800, at),
		rrAt(810, at.Add(810*time.Millisecond)),
		rrAt(790, at.Add(1600*time.Millisecond)),
	}}
	svc := NewReportService(store, hrv.New(), pkgcache.NewMemoryCache(), time.Minute)

	hits := testutil.ToFloat64(svcmetrics.ReportCache.WithLabelValues("hit"))
	misses := testutil.ToFloat64(svcmetrics.ReportCache.WithLabelValues("miss"))

	ctx := context.Background()
	var whole time.Time
	first, err := svc.Report(ctx, "p01", false, whole, whole)
	if err != nil {
		t.Fatalf("first report: %v", err)
	}
	second, err := svc.Report(ctx, "p01", false, whole, whole)
	if err != nil {
		t.Fatalf("second report: %v", err)
	}

	if store.loads != 1 {
		t.Fatalf("store loaded %d times, want 1", store.loads)
	}
	if second.Participant != first.Participant || second.Overall.SDNN != first.Overall.SDNN {
		t.Fatalf("cached report differs: %+v vs %+v", second.Overall, first.Overall)
	}
	if got := testutil.ToFloat64(svcmetrics.ReportCache.WithLabelValues("miss")) - misses; got != 1 {
		t.Fatalf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(svcmetrics.ReportCache.WithLabelValues("hit")) - hits; got != 1 {
		t.Fatalf("cache hits = %v, want 1", got)
	}
}
