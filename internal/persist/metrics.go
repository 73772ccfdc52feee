package persist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

var (
	savesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liftlog_saves_total",
		Help: "Local data file saves by result",
	}, []string{"result"})

	saveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "liftlog_save_duration_seconds",
		Help:    "Time from encoding the payload to the end of the cloud push",
		Buckets: prometheus.DefBuckets,
	})

	cloudPushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liftlog_cloud_push_total",
		Help: "Cloud mirror pushes by result",
	}, []string{"result"})

	savesSuperseded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liftlog_saves_superseded_total",
		Help: "Saves abandoned because a newer change arrived",
	})
)
