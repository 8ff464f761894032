package observ

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commsdesk_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	MailboxActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commsdesk_mailbox_actions_total",
			Help: "Overlay mutations by action (pin, read, sign_off, delete).",
		},
		[]string{"action"},
	)

	MessagesComposed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commsdesk_messages_composed_total",
			Help: "Messages created through compose, by status (sent, scheduled).",
		},
		[]string{"status"},
	)

	GestureCommits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commsdesk_gesture_commits_total",
			Help: "Finished swipe gestures by committed action.",
		},
		[]string{"action"},
	)

	StreamConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "commsdesk_stream_connections",
			Help: "Open websocket stream connections.",
		},
	)
)
