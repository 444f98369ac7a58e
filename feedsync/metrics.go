package feedsync

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opLoadFeed     = "load_feed"
	opLoadComments = "load_comments"
	opPostComment  = "post_comment"
	opLoadStories  = "load_stories"
	opCreatePost   = "create_post"

	resultOK       = "ok"
	resultError    = "error"
	resultRejected = "rejected"
	resultReverted = "reverted"
)

// Metrics counts synchronizer outcomes. A nil *Metrics records nothing.
type Metrics struct {
	duration    *prometheus.HistogramVec
	toggles     *prometheus.CounterVec
	staleLoads  prometheus.Counter
	validations prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "instaterm",
			Subsystem: "feedsync",
			Name:      "operation_duration_seconds",
			Help:      "Remote round-trip time of synchronizer operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "result"}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "instaterm",
			Subsystem: "feedsync",
			Name:      "like_toggles_total",
			Help:      "Like toggles by outcome.",
		}, []string{"result"}),
		staleLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "instaterm",
			Subsystem: "feedsync",
			Name:      "stale_loads_total",
			Help:      "Feed responses discarded because a newer load started.",
		}),
		validations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "instaterm",
			Subsystem: "feedsync",
			Name:      "validation_failures_total",
			Help:      "Inputs rejected before reaching the remote store.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.duration, m.toggles, m.staleLoads, m.validations)
	}
	return m
}

func (m *Metrics) observe(op, result string, start, end time.Time) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(op, result).Observe(end.Sub(start).Seconds())
}

func (m *Metrics) toggle(result string) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(result).Inc()
}

func (m *Metrics) staleLoad() {
	if m == nil {
		return
	}
	m.staleLoads.Inc()
}

func (m *Metrics) validation() {
	if m == nil {
		return
	}
	m.validations.Inc()
}
