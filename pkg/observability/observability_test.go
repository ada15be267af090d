package observability_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStepLeave(ctx, &domain.StepEvent{StepID: "a", Duration: time.Millisecond})
	hooks.OnStepError(ctx, &domain.StepEvent{StepID: "b", Err: "bad"})
	hooks.OnRunComplete(ctx, &domain.RunEvent{StepCount: 2, Failed: true, Duration: 2 * time.Millisecond})
	hooks.OnRunComplete(ctx, &domain.RunEvent{StepCount: 0})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Steps.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Steps.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("ok")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StepDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.Hooks().OnRunComplete(context.Background(), &domain.RunEvent{})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `stepwise_runs_total{result="ok"} 1`)
}

func TestLoggingHooks_StepErrorAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	hooks := observability.LoggingHooks(logger)
	ctx := context.Background()

	hooks.OnRunStart(ctx, &domain.RunEvent{StepCount: 1})
	hooks.OnStepError(ctx, &domain.StepEvent{StepID: "s1", Title: "Shout", Err: "bad"})

	out := buf.String()
	assert.NotContains(t, out, "run started")
	assert.Contains(t, out, "step failed")
	assert.Contains(t, out, "err=bad")
}

func TestHooks_Merge(t *testing.T) {
	m := observability.NewMetrics()
	merged := m.Hooks().Merge(observability.LoggingHooks(slog.New(slog.NewTextHandler(io.Discard, nil))))

	merged.OnStepLeave(context.Background(), &domain.StepEvent{})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Steps.WithLabelValues("ok")))
}
