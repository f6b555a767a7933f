package selleradapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAcceptOrRejectJobSendsBody(t *testing.T) {
	var got acceptBody
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	if err := c.AcceptOrRejectJob(context.Background(), 42, false, "Invalid offering name"); err != nil {
		t.Fatal(err)
	}
	if gotKey != "secret" {
		t.Fatalf("x-api-key = %q", gotKey)
	}
	if got.Accept || got.Reason != "Invalid offering name" {
		t.Fatalf("got %#v", got)
	}
}

func TestRequestPaymentOmitsNilPayableDetail(t *testing.T) {
	var raw map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	if err := c.RequestPayment(context.Background(), 1, "Request accepted", nil); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["payableDetail"]; ok {
		t.Fatalf("expected payableDetail omitted, got %#v", raw)
	}
}

func TestDeliverJobAcceptsStructuredDeliverable(t *testing.T) {
	var got deliverableBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	deliverable := map[string]interface{}{"type": "json", "value": map[string]int{"a": 1}}
	if err := c.DeliverJob(context.Background(), 7, deliverable, &PayableDetail{Amount: 1.5}); err != nil {
		t.Fatal(err)
	}
}

func TestListActiveJobsAcceptsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	page, err := c.ListActiveJobs(context.Background(), 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Data) != 2 {
		t.Fatalf("got %d jobs", len(page.Data))
	}
}

func TestListActiveJobsAcceptsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":1}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	page, err := c.ListActiveJobs(context.Background(), 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Data) != 1 {
		t.Fatalf("got %d jobs", len(page.Data))
	}
}
