package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	tasksCreated  prometheus.Counter
	rejected      *prometheus.CounterVec
	activeStreams prometheus.Gauge
	streamsClosed *prometheus.CounterVec
	linesSent     prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "topicbook",
			Name:      "tasks_created_total",
			Help:      "Generation tasks accepted by POST /generate.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "topicbook",
			Name:      "requests_rejected_total",
			Help:      "Requests answered with an error code.",
		}, []string{"code"}),
		activeStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "topicbook",
			Name:      "status_streams_active",
			Help:      "Open status event streams.",
		}),
		streamsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "topicbook",
			Name:      "status_streams_closed_total",
			Help:      "Status event streams by how they ended.",
		}, []string{"outcome"}),
		linesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "topicbook",
			Name:      "status_lines_sent_total",
			Help:      "Progress lines written to status streams.",
		}),
	}
	reg.MustRegister(m.tasksCreated, m.rejected, m.activeStreams, m.streamsClosed, m.linesSent)
	return m
}
