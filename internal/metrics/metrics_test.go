package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.GateDecision("allowed")
	m.GateDecision("not_friends")
	m.GateDecision("not_friends")
	m.QuotaDecision("posts", false)
	m.NotificationCreated("CHAT")
	m.QuotaDecision("projects", true)
	m.LikeToggled("post", true)
	m.LikeToggled("comment", false)
	m.SubscriberAdded()
	m.SubscriberAdded()
	m.SubscriberRemoved()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.gateDecisions.WithLabelValues("allowed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.gateDecisions.WithLabelValues("not_friends")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaDecisions.WithLabelValues("posts", "denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsCreated.WithLabelValues("CHAT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaDecisions.WithLabelValues("projects", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.likesToggled.WithLabelValues("post", "liked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.likesToggled.WithLabelValues("comment", "unliked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.realtimeSubscribers))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.GateDecision("self")
		m.QuotaDecision("projects", true)
		m.NotificationCreated("NEWS")
		m.SubscriberAdded()
		m.SubscriberRemoved()
		m.LikeToggled("comment", false)
	})
}
