package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestLicensingMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewLicensingMetrics(reg)

	metrics.ObserveValidation("valid")
	metrics.ObserveValidation("valid")
	metrics.ObserveValidation("not_found")
	metrics.ObserveCacheHit()
	metrics.ObserveConsumption("granted")
	metrics.ObserveConsumption("denied")
	metrics.ObserveWebhook("checkout.session.completed")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "license_validations_total", "status", "valid"); err != nil {
		t.Fatalf("fetch validations: %v", err)
	} else if got != 2 {
		t.Fatalf("expected valid=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "license_validations_total", "status", "not_found"); err != nil {
		t.Fatalf("fetch validations: %v", err)
	} else if got != 1 {
		t.Fatalf("expected not_found=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "project_credit_consumptions_total", "decision", "granted"); err != nil {
		t.Fatalf("fetch consumptions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected granted=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "stripe_webhook_events_total", "event_type", "checkout.session.completed"); err != nil {
		t.Fatalf("fetch webhooks: %v", err)
	} else if got != 1 {
		t.Fatalf("expected webhook=1, got %f", got)
	}
}

func TestLicensingMetricsNilSafe(t *testing.T) {
	var metrics *LicensingMetrics
	metrics.ObserveValidation("valid")
	metrics.ObserveCacheHit()
	metrics.ObserveConsumption("granted")
	metrics.ObserveWebhook("x")

	empty := NewLicensingMetrics(nil)
	empty.ObserveValidation("valid")
}

func TestNormalizeLabelDefaultsUnknown(t *testing.T) {
	if got := normalizeLabel(""); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
