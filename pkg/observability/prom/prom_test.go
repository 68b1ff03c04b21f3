package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/locuszoom/pkg/observability"
)

func TestMetricsRecordEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Install()
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	observability.Source().OnFetchComplete(ctx, "base", "u", 200, 10*time.Millisecond, nil)
	observability.Source().OnFetchComplete(ctx, "ld", "u", 500, time.Millisecond, errors.New("x"))
	observability.Cache().OnCacheHit(ctx, "response")
	observability.Cache().OnCacheSet(ctx, "artifact", 100)
	observability.Plot().OnCurtain(ctx, "p", "association", errors.New("x"))

	if got := testutil.ToFloat64(m.fetches.WithLabelValues("base", "ok")); got != 1 {
		t.Errorf("base ok fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("ld", "error")); got != 1 {
		t.Errorf("ld error fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheEvents.WithLabelValues("response", "hit")); got != 1 {
		t.Errorf("response hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheBytes.WithLabelValues("artifact")); got != 100 {
		t.Errorf("artifact bytes = %v, want 100", got)
	}
	if got := testutil.ToFloat64(m.curtains.WithLabelValues("association")); got != 1 {
		t.Errorf("curtains = %v, want 1", got)
	}
}
