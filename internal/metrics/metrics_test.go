package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hepframe/hepframe/internal/core/pipeline"
)

func TestObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	obs := m.Observer(5)
	obs.ObservePass(pipeline.PassStats{Events: 100, Sinks: 1, Workers: 4, Duration: 20 * time.Millisecond})
	obs.ObservePass(pipeline.PassStats{Events: 50, Sinks: 1, Workers: 2, Duration: 10 * time.Millisecond})
	obs.ObservePass(pipeline.PassStats{Err: errors.New("boom")})

	assert.Equal(t, 150.0, testutil.ToFloat64(m.passEvents.WithLabelValues("5")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.passErrors.WithLabelValues("5")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.workers.WithLabelValues("5")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.passDuration))
}

func TestRunFinished(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.RunFinished(1, nil)
	m.RunFinished(1, nil)
	m.RunFinished(1, errors.New("x"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("1", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("1", "error")))
}

func TestNew_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}
