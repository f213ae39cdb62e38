package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector()

	c.FetchStarted()
	c.FetchStarted()
	c.FetchFinished()
	c.RecordOutcome("acquired")
	c.RecordOutcome("rejected")
	c.RecordOutcome("rejected")
	c.SetAcquired(42)
	c.ObserveBatch(0.25)

	families, err := c.registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	byName := make(map[string]bool)
	for _, f := range families {
		byName[f.GetName()] = true
	}

	for _, name := range []string{
		"beerscape_attempts_total",
		"beerscape_acquired",
		"beerscape_in_flight",
		"beerscape_batch_duration_seconds",
	} {
		if !byName[name] {
			t.Errorf("expected metric family %s", name)
		}
	}
}

func TestHandlerExposition(t *testing.T) {
	c := NewCollector()
	c.RecordOutcome("transport_error")
	c.SetAcquired(7)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `beerscape_attempts_total{outcome="transport_error"} 1`) {
		t.Errorf("expected attempts counter in exposition, got:\n%s", body)
	}
	if !strings.Contains(body, "beerscape_acquired 7") {
		t.Errorf("expected acquired gauge in exposition, got:\n%s", body)
	}
}
