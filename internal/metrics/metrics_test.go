package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecordHTTPRequest(t *testing.T) {
	m := New("fein")
	m.RecordHTTPRequest("api", "GET", "/accounts", "200", 10*time.Millisecond)
	m.RecordLogin(true)
	m.RecordLogin(false)
	m.RecordRegistration()
	m.RecordTransactionCreated()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("metrics endpoint status: %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"fein_http_requests_total",
		`fein_logins_total{outcome="failure"} 1`,
		"fein_registrations_total 1",
		"fein_transactions_created_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestInFlightGauge(t *testing.T) {
	m := New("fein")
	m.IncrementInFlight()
	m.IncrementInFlight()
	m.DecrementInFlight()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "fein_http_requests_in_flight 1") {
		t.Error("expected one in-flight request")
	}
}
