package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LicensingMetrics records validation and consumption outcomes.
type LicensingMetrics struct {
	validations  *prometheus.CounterVec
	cacheHits    prometheus.Counter
	consumptions *prometheus.CounterVec
	webhooks     *prometheus.CounterVec
}

// NewLicensingMetrics registers the licensing metrics on the provided registerer.
func NewLicensingMetrics(reg prometheus.Registerer) *LicensingMetrics {
	if reg == nil {
		return &LicensingMetrics{}
	}
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "license_validations_total",
		Help: "License validation calls by outcome status.",
	}, []string{"status"})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "license_validation_cache_hits_total",
		Help: "Validations served from the result cache.",
	})
	consumptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "project_credit_consumptions_total",
		Help: "Project credit consumption attempts by decision.",
	}, []string{"decision"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripe_webhook_events_total",
		Help: "Stripe webhook events by type.",
	}, []string{"event_type"})
	reg.MustRegister(validations, cacheHits, consumptions, webhooks)
	return &LicensingMetrics{
		validations:  validations,
		cacheHits:    cacheHits,
		consumptions: consumptions,
		webhooks:     webhooks,
	}
}

// ObserveValidation records a validation outcome.
func (m *LicensingMetrics) ObserveValidation(status string) {
	if m == nil || m.validations == nil {
		return
	}
	m.validations.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveCacheHit records a validation served from cache.
func (m *LicensingMetrics) ObserveCacheHit() {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.Inc()
}

// ObserveConsumption records a credit consumption decision (granted/denied).
func (m *LicensingMetrics) ObserveConsumption(decision string) {
	if m == nil || m.consumptions == nil {
		return
	}
	m.consumptions.WithLabelValues(normalizeLabel(decision)).Inc()
}

// ObserveWebhook records a processed Stripe event type.
func (m *LicensingMetrics) ObserveWebhook(eventType string) {
	if m == nil || m.webhooks == nil {
		return
	}
	m.webhooks.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
