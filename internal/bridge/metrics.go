package bridge

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/async"
)

const outcomeCancelled = "cancelled"

var (
	tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launcher_tasks_total",
			Help: "Total number of consumed tasks by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	activeTasks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "launcher_active_tasks",
			Help: "Number of task handles not yet consumed.",
		},
	)
)

func init() {
	prometheus.MustRegister(tasksTotal)
	prometheus.MustRegister(activeTasks)

	for _, kind := range async.Kinds {
		for _, code := range []Code{Success, NetworkError, IOError, DecodeError} {
			tasksTotal.WithLabelValues(string(kind), code.String())
		}
		tasksTotal.WithLabelValues(string(kind), outcomeCancelled)
	}
}
