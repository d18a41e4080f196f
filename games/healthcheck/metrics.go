package healthcheck

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "squadhealth_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	roomsLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "squadhealth_rooms_live",
			Help: "Rooms currently held by the registry, ended or not",
		},
	)

	roomsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "squadhealth_rooms_completed_total",
			Help: "Total rooms advanced past their final question",
		},
	)

	joinAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "squadhealth_join_attempts_total",
			Help: "Join attempts by outcome",
		},
		[]string{"result"}, // "joined" or "not-found"
	)

	responsesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "squadhealth_responses_total",
			Help: "Responses recorded by category",
		},
		[]string{"category"},
	)

	commandsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "squadhealth_commands_rejected_total",
			Help: "Rejected commands by error code",
		},
		[]string{"code"},
	)
)
