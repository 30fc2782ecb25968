package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records counters for the payment intent lifecycle.
type CheckoutMetrics struct {
	webhookEvents *prometheus.CounterVec
	syncs         *prometheus.CounterVec
	sessions      *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_webhook_events_total",
		Help: "Gateway webhook events by type and outcome.",
	}, []string{"event_type", "outcome"})
	syncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sync_total",
		Help: "On-demand reconciliation calls by outcome.",
	}, []string{"outcome"})
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Checkout session opens, split by created vs resumed.",
	}, []string{"mode"})
	reg.MustRegister(webhookEvents, syncs, sessions)
	return &CheckoutMetrics{
		webhookEvents: webhookEvents,
		syncs:         syncs,
		sessions:      sessions,
	}
}

// IncWebhookEvent counts one processed webhook delivery.
func (m *CheckoutMetrics) IncWebhookEvent(eventType, outcome string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// IncSync counts one reconciliation call.
func (m *CheckoutMetrics) IncSync(outcome string) {
	if m == nil || m.syncs == nil {
		return
	}
	m.syncs.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncSession counts one checkout session open.
func (m *CheckoutMetrics) IncSession(mode string) {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.WithLabelValues(normalizeLabel(mode)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
