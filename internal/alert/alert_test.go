package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDisabledNotifierSendsNothing(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	n := New("")
	if n.Enabled() {
		t.Fatal("expected disabled notifier")
	}
	n.Trigger(context.Background(), "k", "socket-listener", "disconnected")
	if called {
		t.Fatal("no request should have been sent")
	}
}

func TestTriggerSendsExpectedEnvelope(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := New("routing-key")
	n.endpoint = srv.URL
	n.Trigger(context.Background(), "acp-seller:socket-disconnect", "socket-listener", "disconnected for 130s")

	if got["routing_key"] != "routing-key" || got["event_action"] != "trigger" {
		t.Fatalf("got %#v", got)
	}
	payload, ok := got["payload"].(map[string]interface{})
	if !ok || payload["summary"] != "disconnected for 130s" {
		t.Fatalf("got payload %#v", got["payload"])
	}
}

func TestDedupKeyIsStable(t *testing.T) {
	a := DedupKey("socket-disconnect")
	b := DedupKey("socket-disconnect")
	if a != b {
		t.Fatalf("expected stable dedup key, got %q and %q", a, b)
	}
}
