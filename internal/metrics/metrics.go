// Package metrics exposes engine and benchmark metrics to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hepframe/hepframe/internal/core/pipeline"
)

const namespace = "hepframe"

// Metrics holds the collectors registered by New.
type Metrics struct {
	passDuration *prometheus.HistogramVec
	passEvents   *prometheus.CounterVec
	passErrors   *prometheus.CounterVec
	workers      *prometheus.GaugeVec
	runs         *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall-clock time of one execution pass over the dataset.",
			// 1ms to ~65s
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 9),
		}, []string{"query"}),
		passEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_events_total",
			Help:      "Events read by execution passes.",
		}, []string{"query"}),
		passErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_errors_total",
			Help:      "Execution passes that failed.",
		}, []string{"query"}),
		workers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pass_workers",
			Help:      "Workers used by the most recent pass.",
		}, []string{"query"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Benchmark runs by outcome.",
		}, []string{"query", "status"}),
	}

	for _, c := range []prometheus.Collector{m.passDuration, m.passEvents, m.passErrors, m.workers, m.runs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observer returns a pipeline.Observer labelled with query.
func (m *Metrics) Observer(query int) pipeline.Observer {
	q := strconv.Itoa(query)
	return passObserver{
		duration: m.passDuration.WithLabelValues(q),
		events:   m.passEvents.WithLabelValues(q),
		errors:   m.passErrors.WithLabelValues(q),
		workers:  m.workers.WithLabelValues(q),
	}
}

// RunFinished counts a benchmark run.
func (m *Metrics) RunFinished(query int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.runs.WithLabelValues(strconv.Itoa(query), status).Inc()
}

type passObserver struct {
	duration prometheus.Observer
	events   prometheus.Counter
	errors   prometheus.Counter
	workers  prometheus.Gauge
}

func (o passObserver) ObservePass(s pipeline.PassStats) {
	if s.Err != nil {
		o.errors.Inc()
		return
	}
	o.duration.Observe(s.Duration.Seconds())
	o.events.Add(float64(s.Events))
	o.workers.Set(float64(s.Workers))
}
