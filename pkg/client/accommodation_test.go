package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"staybook/pkg/model"
)

func TestAccommodationValidate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/accommodations/acc-1/validate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("guest_count") != "2" {
			t.Errorf("expected guest_count 2, got %q", r.URL.Query().Get("guest_count"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"valid":true,"host_id":"host-1","total_price":500,"approval_mode":"MANUAL","name":"Seaside Cabin"}`))
	}))
	defer server.Close()

	c := NewAccommodationClient(server.URL)
	result, err := c.Validate(context.Background(), "acc-1", model.Today().AddDays(7), model.Today().AddDays(10), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Valid || result.HostID != "host-1" || result.Name != "Seaside Cabin" {
		t.Errorf("unexpected validation result: %+v", result)
	}
	if result.AutoApproval() {
		t.Error("MANUAL approval mode must not report auto-approval")
	}
}

func TestAccommodationValidate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewAccommodationClient(server.URL)
	result, err := c.Validate(context.Background(), "acc-1", model.Today().AddDays(7), model.Today().AddDays(10), 2)
	if err == nil {
		t.Fatalf("expected an error for a 5xx response, got %+v", result)
	}
}

func TestAccommodationGet_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewAccommodationClient(server.URL)
	if _, err := c.Get(context.Background(), "acc-1"); err == nil {
		t.Fatal("expected an error for a 5xx response")
	}
}
