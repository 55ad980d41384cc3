package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	backendRemote = "remote"
	backendLocal  = "local"

	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeTimeout  = "timeout"
	outcomeRejected = "rejected"
)

var (
	storeWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kalyxon",
			Subsystem: "progress_store",
			Name:      "writes_total",
			Help:      "Progress writes by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)

	storeReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kalyxon",
			Subsystem: "progress_store",
			Name:      "reads_total",
			Help:      "Progress reads by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)

	sessionNoticesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kalyxon",
			Subsystem: "session",
			Name:      "notices_total",
			Help:      "Notices raised for completions that were not persisted.",
		},
	)
)
