package authkit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink is an ActivitySink that counts auth events by type.
type MetricsSink struct {
	events *prometheus.CounterVec
}

var _ ActivitySink = (*MetricsSink)(nil)

// NewMetricsSink builds the sink and registers its collectors. Pass
// prometheus.DefaultRegisterer unless the process keeps its own registry.
func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	s := &MetricsSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authkit",
			Name:      "events_total",
			Help:      "Authentication events processed, labeled by event type.",
		}, []string{"event"}),
	}

	if reg != nil {
		reg.MustRegister(s.events)
	}

	return s
}

// Record implements ActivitySink.
func (s *MetricsSink) Record(_ context.Context, event ActivityEvent) error {
	s.events.WithLabelValues(string(event.EventType)).Inc()
	return nil
}

// CombineActivitySinks fans an event out to every sink. Each sink gets the
// event even if an earlier one errors; the first error is returned.
func CombineActivitySinks(sinks ...ActivitySink) ActivitySink {
	return ActivitySinkFunc(func(ctx context.Context, event ActivityEvent) error {
		var first error
		for _, sink := range sinks {
			if sink == nil {
				continue
			}
			if err := sink.Record(ctx, event); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}
