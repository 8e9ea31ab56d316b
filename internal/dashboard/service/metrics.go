package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// sentimentAnalysesTotal counts produced analyses by path and verdict
	sentimentAnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_sentiment_analyses_total",
			Help: "Total number of sentiment analyses produced",
		},
		[]string{"source", "sentiment"}, // source: local|remote|fallback
	)

	// remoteFallbackTotal counts remote failures masked by the local classifier
	remoteFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_remote_sentiment_fallback_total",
			Help: "Total number of remote sentiment failures replaced by the local classifier",
		},
		[]string{"reason"}, // reason: unavailable|malformed|cancelled
	)

	// analysisTasksTotal counts card analysis tasks by outcome
	analysisTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_card_analysis_tasks_total",
			Help: "Total number of card analysis tasks",
		},
		[]string{"outcome"}, // outcome: completed|cancelled|stale|panicked
	)

	// authEventsTotal counts session lifecycle events
	authEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_auth_events_total",
			Help: "Total number of authentication events",
		},
		[]string{"event"}, // event: login|signup|logout|password_reset
	)

	// activeSessionStates tracks sessions with in-memory card state
	activeSessionStates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_active_session_states",
			Help: "Number of sessions holding card and favorites state",
		},
	)
)
