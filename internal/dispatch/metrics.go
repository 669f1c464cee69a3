package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	triggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "trigger",
		Name:      "requests_total",
		Help:      "Call trigger requests broken down by result.",
	}, []string{"result"})

	webhooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "webhook",
		Name:      "events_total",
		Help:      "Inbound provider events broken down by interaction type.",
	}, []string{"interaction_type"})

	completionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "webhook",
		Name:      "completions_total",
		Help:      "Call-ended processing broken down by result.",
	}, []string{"result"})

	extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "extraction",
		Name:      "results_total",
		Help:      "Structured extraction attempts broken down by scenario and result.",
	}, []string{"scenario_type", "result"})

	repliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "responder",
		Name:      "replies_total",
		Help:      "Live replies broken down by scenario and result.",
	}, []string{"scenario_type", "result"})
)

const (
	resultOK        = "ok"
	resultInvalid   = "invalid"
	resultNotFound  = "not_found"
	resultRejected  = "provider_error"
	resultError     = "error"
	resultDropped   = "dropped"
	resultDuplicate = "duplicate"
	resultFallback  = "fallback"
)
