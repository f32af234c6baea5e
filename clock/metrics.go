package clock

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// transitionsTotal counts state-machine transitions by kind and result
// (applied, rejected, noop).
var transitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "timeclock",
		Subsystem: "clock",
		Name:      "transitions_total",
		Help:      "Clock transitions by kind and result.",
	},
	[]string{"kind", "result"},
)
