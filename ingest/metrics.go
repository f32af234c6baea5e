package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// hardwareEventsTotal counts hardware events by outcome: applied,
	// rejected (guard condition) or dropped (malformed).
	hardwareEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "timeclock",
			Subsystem: "ingest",
			Name:      "hardware_events_total",
			Help:      "Hardware clock events by outcome.",
		},
		[]string{"outcome"},
	)

	// droppedEventsTotal counts dropped hardware events by reason.
	droppedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "timeclock",
			Subsystem: "ingest",
			Name:      "dropped_events_total",
			Help:      "Hardware clock events dropped at the ingestion boundary, by reason.",
		},
		[]string{"reason"},
	)
)
