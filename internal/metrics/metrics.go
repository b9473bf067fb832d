// Package metrics exposes Prometheus collectors for the data layer.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "giftwiser"

// Metrics holds the collectors updated by the repository.
type Metrics struct {
	Loads        *prometheus.CounterVec
	Saves        *prometheus.CounterVec
	SaveDuration prometheus.Histogram
	People       prometheus.Gauge
	Ideas        prometheus.Gauge
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "loads_total",
			Help:      "Collection loads from the durable store, by result.",
		}, []string{"result"}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "saves_total",
			Help:      "Full-collection saves to the durable store, by result.",
		}, []string{"result"}),
		SaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "save_duration_seconds",
			Help:      "Time spent writing the collection to the durable store.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		People: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "people",
			Help:      "People currently held in memory.",
		}),
		Ideas: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ideas",
			Help:      "Ideas currently held in memory across all people.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Loads, m.Saves, m.SaveDuration, m.People, m.Ideas)
	}
	return m
}

// ObserveLoad counts a load attempt.
func (m *Metrics) ObserveLoad(err error) {
	if m == nil {
		return
	}
	m.Loads.WithLabelValues(result(err)).Inc()
}

// ObserveSave counts a save attempt and records its duration.
func (m *Metrics) ObserveSave(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Saves.WithLabelValues(result(err)).Inc()
	m.SaveDuration.Observe(d.Seconds())
}

// SetCollection records the current collection size.
func (m *Metrics) SetCollection(people, ideas int) {
	if m == nil {
		return
	}
	m.People.Set(float64(people))
	m.Ideas.Set(float64(ideas))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
