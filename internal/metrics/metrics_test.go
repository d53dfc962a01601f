package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RecordCreated()
	m.RecordCreated()
	m.RecordUpdated()
	m.StorageWriteFailed()
	m.SetRecordCount(7)

	if got := testutil.ToFloat64(m.recordsCreated); got != 2 {
		t.Fatalf("expected 2 created, got %v", got)
	}
	if got := testutil.ToFloat64(m.recordsUpdated); got != 1 {
		t.Fatalf("expected 1 updated, got %v", got)
	}
	if got := testutil.ToFloat64(m.storageFailures); got != 1 {
		t.Fatalf("expected 1 storage failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.recordsStored); got != 7 {
		t.Fatalf("expected gauge 7, got %v", got)
	}
}

func TestMetrics_ObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/events/{id}", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/events/{id}", http.StatusNotFound, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/events/{id}", "200")); got != 1 {
		t.Fatalf("expected one 200 request, got %v", got)
	}
	if got := testutil.CollectAndCount(m.requestDuration); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "nazolog_records_created_total 1") {
		t.Fatalf("expected counter in exposition, got:\n%s", body)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordCreated()
	m.RecordUpdated()
	m.StorageWriteFailed()
	m.SetRecordCount(1)
	m.ObserveRequest("GET", "/", 200, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}
