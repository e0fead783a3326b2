package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()

	if err := Register(reg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// a second registration of the same collectors must fail
	if err := Register(reg); err == nil {
		t.Error("Expected duplicate registration error")
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(QuotaDecisionsTotal.WithLabelValues("free", "denied"))
	QuotaDecisionsTotal.WithLabelValues("free", "denied").Inc()

	if got := testutil.ToFloat64(QuotaDecisionsTotal.WithLabelValues("free", "denied")); got != before+1 {
		t.Errorf("Expected %v, got %v", before+1, got)
	}
}
