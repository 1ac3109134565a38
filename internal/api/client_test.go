package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreamware/canopy/internal/overlay"
)

// TestClientJoinDecodes verifies the client posts JSON and decodes the
// daemon's response
func TestClientJoinDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/join" {
			t.Errorf("Expected /join, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(JoinResponse{ID: "N02", Zones: 2})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := NewClient(srv.URL).Join(ctx)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if resp.ID != "N02" || resp.Zones != 2 {
		t.Errorf("Unexpected join response: %+v", resp)
	}
}

// TestClientLeaveSendsID verifies the leave request body carries the zone ID
// and that a conflict surfaces as an error
func TestClientLeaveSendsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}
		var req LeaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode leave request: %v", err)
		}
		if req.ID != "N02" {
			t.Errorf("Expected ID N02, got %q", req.ID)
		}
		http.Error(w, "blocked", http.StatusConflict)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := NewClient(srv.URL).Leave(ctx, "N02"); err == nil {
		t.Error("Expected error for 409 response")
	}
}

// TestClientGetEscapesKey verifies keys are path-escaped on lookup
func TestClientGetEscapesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/keys/a b" {
			t.Errorf("Expected decoded path '/keys/a b', got %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(GetResponse{Found: true, Value: "1", Owner: "N01"})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := NewClient(srv.URL).Get(ctx, "a b")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !resp.Found || resp.Value != "1" {
		t.Errorf("Unexpected get response: %+v", resp)
	}
}

// TestClientStatsError verifies non-2xx stats responses surface as errors
func TestClientStatsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := NewClient(srv.URL).Stats(ctx); err == nil {
		t.Error("Expected error for 404 response")
	}
}

// TestClientStatsDecodes verifies the stats report round trips
func TestClientStatsDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(StatsResponse{
			Zones: []overlay.ZoneStat{{ID: "N01", Area: 1.0, Keys: 3}},
		})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := NewClient(srv.URL).Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if len(resp.Zones) != 1 || resp.Zones[0].ID != "N01" {
		t.Errorf("Unexpected stats: %+v", resp)
	}
}
