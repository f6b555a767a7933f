package debugapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/obscura-network/acp-seller-runtime/internal/ledger"
)

func TestHandleStatsReportsLedgerSnapshot(t *testing.T) {
	l := ledger.New()
	l.TryEnter(1)
	l.MarkAccepted(2)

	s := New("127.0.0.1:0", l)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/stats", nil)
	s.handleStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.InFlightJobs != 1 || stats.TrackedJobs != 1 {
		t.Fatalf("got %#v", stats)
	}
}

func TestHandleHealthz(t *testing.T) {
	s := New("127.0.0.1:0", ledger.New())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/healthz", nil)
	s.handleHealthz(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}
