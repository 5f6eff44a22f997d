package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"anima-hq/tulpa/pkg/config"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	cfg := &config.MetricsConfig{Namespace: "tulpa"}
	return NewCollector(cfg, registry), registry
}

func TestCollector_RecordEvaluation(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordEvaluation("Luna", "respond", 50*time.Microsecond)
	c.RecordEvaluation("Luna", "respond", 80*time.Microsecond)
	c.RecordEvaluation("Luna", "suppress", 20*time.Microsecond)
	c.RecordEvaluation("Rex", "retry", 30*time.Microsecond)

	if got := testutil.ToFloat64(c.evaluationsTotal.WithLabelValues("Luna", "respond")); got != 2 {
		t.Errorf("Luna/respond = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.evaluationsTotal.WithLabelValues("Luna", "suppress")); got != 1 {
		t.Errorf("Luna/suppress = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.evaluationsTotal.WithLabelValues("Rex", "retry")); got != 1 {
		t.Errorf("Rex/retry = %v, want 1", got)
	}
}

func TestCollector_Counters(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordDirectiveFire("respond")
	c.RecordDirectiveFire("respond")
	c.RecordRegexRejection("nested_quantifier")
	c.RecordExpressionError("type")
	c.RecordRetryScheduled()
	c.RecordRetryScheduled()
	c.RecordRetryScheduled()

	if got := testutil.ToFloat64(c.directiveFires.WithLabelValues("respond")); got != 2 {
		t.Errorf("directive fires = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.regexRejections.WithLabelValues("nested_quantifier")); got != 1 {
		t.Errorf("regex rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.expressionErrors.WithLabelValues("type")); got != 1 {
		t.Errorf("expression errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.retriesScheduled); got != 3 {
		t.Errorf("retries scheduled = %v, want 3", got)
	}
}

func TestHandler_Exposition(t *testing.T) {
	c, registry := newTestCollector(t)
	c.RecordEvaluation("Luna", "respond", time.Millisecond)

	srv := httptest.NewServer(Handler(registry))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := make([]byte, 64*1024)
	n, _ := resp.Body.Read(body)
	text := string(body[:n])
	if !strings.Contains(text, "tulpa_evaluations_total") {
		t.Errorf("exposition missing tulpa_evaluations_total:\n%s", text)
	}
	if !strings.Contains(text, `entity="Luna"`) {
		t.Errorf("exposition missing entity label:\n%s", text)
	}
}
