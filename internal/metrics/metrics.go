package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "yop"

// Metrics holds the service counters. A nil *Metrics is valid and records
// nothing, so components can be built without a registry in tests.
type Metrics struct {
	gateDecisions        *prometheus.CounterVec
	quotaDecisions       *prometheus.CounterVec
	notificationsCreated *prometheus.CounterVec
	realtimeSubscribers  prometheus.Gauge
	likesToggled         *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		// Labels: outcome (allowed, not_friends, self)
		gateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Messaging gate decisions by outcome",
		}, []string{"outcome"}),

		// Labels: kind (posts, projects), outcome (allowed, denied)
		quotaDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_decisions_total",
			Help:      "Daily quota decisions by kind and outcome",
		}, []string{"kind", "outcome"}),

		notificationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Notifications created by kind",
		}, []string{"kind"}),

		realtimeSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_subscribers",
			Help:      "Open realtime subscriptions",
		}),

		// Labels: target (post, comment), direction (liked, unliked)
		likesToggled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "likes_toggled_total",
			Help:      "Like toggles by target and direction",
		}, []string{"target", "direction"}),
	}
}

// GateDecision counts a messaging gate outcome. A nil Metrics records nothing.
func (m *Metrics) GateDecision(outcome string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(outcome).Inc()
}

// QuotaDecision counts an allowed or denied daily quota check for kind.
func (m *Metrics) QuotaDecision(kind string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.quotaDecisions.WithLabelValues(kind, outcome).Inc()
}

// NotificationCreated counts a stored notification of the given kind.
func (m *Metrics) NotificationCreated(kind string) {
	if m == nil {
		return
	}
	m.notificationsCreated.WithLabelValues(kind).Inc()
}

// SubscriberAdded increments the live realtime subscriber gauge.
func (m *Metrics) SubscriberAdded() {
	if m == nil {
		return
	}
	m.realtimeSubscribers.Inc()
}

// SubscriberRemoved decrements the live realtime subscriber gauge.
func (m *Metrics) SubscriberRemoved() {
	if m == nil {
		return
	}
	m.realtimeSubscribers.Dec()
}

// LikeToggled counts a like or unlike on target.
func (m *Metrics) LikeToggled(target string, liked bool) {
	if m == nil {
		return
	}
	direction := "unliked"
	if liked {
		direction = "liked"
	}
	m.likesToggled.WithLabelValues(target, direction).Inc()
}
