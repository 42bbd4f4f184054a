package engine

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/period"
)

func TestMetrics_RecordsQueries(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	eng := newEngine(t, WithMetrics(m))

	q, err := eng.Open(ctx, moonRequest())
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TreesBuilt.WithLabelValues("VIMSOTTARI")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Queries.WithLabelValues("VIMSOTTARI", "open")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.Nodes.WithLabelValues("VIMSOTTARI")))

	_, err = q.At(ctx, birth, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Queries.WithLabelValues("VIMSOTTARI", "locate")))

	// 200 years forces one forward extension.
	_, err = q.At(ctx, birth.Add(time.Duration(200*domain.Year)), 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extensions.WithLabelValues("VIMSOTTARI")))

	_, err = q.At(ctx, birth, -1)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("VIMSOTTARI", "INVALID_DEPTH")))

	_, err = eng.Open(ctx, Request{System: "NOPE"})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("NOPE", "UNKNOWN_SYSTEM")))

	n, err := testutil.GatherAndCount(reg, "dasha_query_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe("VIMSOTTARI", "open", period.Stats{}, period.Stats{}, nil)
	})
}
