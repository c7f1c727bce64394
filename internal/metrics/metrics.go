// Package metrics exposes Prometheus counters for behavior attachment and
// emitted custom events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives lifecycle notifications from the behavior registry.
type Recorder interface {
	AttachSucceeded(marker string)
	AttachFailed(marker string)
	Disposed(marker string)
	EventEmitted(name string)
}

// Collector records behavior metrics into a Prometheus registry.
type Collector struct {
	attaches    *prometheus.CounterVec
	failures    *prometheus.CounterVec
	disposals   *prometheus.CounterVec
	events      *prometheus.CounterVec
	activeRoots *prometheus.GaugeVec
}

// NewCollector creates the metric vectors under namespace and registers them
// with reg. A nil reg leaves them unregistered.
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	if namespace == "" {
		namespace = "canon"
	}
	c := &Collector{
		attaches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "behavior_attach_total",
			Help:      "Roots a behavior attached to.",
		}, []string{"marker"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "behavior_attach_errors_total",
			Help:      "Attach calls that returned an error or panicked.",
		}, []string{"marker"}),
		disposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "behavior_dispose_total",
			Help:      "Disposers run after a root left the document.",
		}, []string{"marker"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "custom_events_total",
			Help:      "Custom events dispatched by behaviors.",
		}, []string{"event"}),
		activeRoots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "behavior_active_roots",
			Help:      "Roots currently holding a live attachment.",
		}, []string{"marker"}),
	}
	if reg == nil {
		return c, nil
	}
	for _, col := range []prometheus.Collector{c.attaches, c.failures, c.disposals, c.events, c.activeRoots} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AttachSucceeded implements Recorder.
func (c *Collector) AttachSucceeded(marker string) {
	c.attaches.WithLabelValues(marker).Inc()
	c.activeRoots.WithLabelValues(marker).Inc()
}

// AttachFailed implements Recorder.
func (c *Collector) AttachFailed(marker string) {
	c.failures.WithLabelValues(marker).Inc()
}

// Disposed implements Recorder.
func (c *Collector) Disposed(marker string) {
	c.disposals.WithLabelValues(marker).Inc()
	c.activeRoots.WithLabelValues(marker).Dec()
}

// EventEmitted implements Recorder.
func (c *Collector) EventEmitted(name string) {
	c.events.WithLabelValues(name).Inc()
}

type nop struct{}

func (nop) AttachSucceeded(string) {}
func (nop) AttachFailed(string)    {}
func (nop) Disposed(string)        {}
func (nop) EventEmitted(string)    {}

// Nop returns a Recorder that discards everything.
func Nop() Recorder { return nop{} }
