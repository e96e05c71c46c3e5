package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/saiyan/internal/store"
)

func TestAPI_EventWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	base := time.Now().Add(-time.Minute)
	for i, kind := range []string{store.EventChargeStart, store.EventBurst, store.EventSwipe, store.EventBurst} {
		e := &store.Event{Kind: kind, Detail: "test", CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := s.Events().Record(e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	type listed struct {
		Events []struct {
			ID   string `json:"id"`
			Kind string `json:"kind"`
		} `json:"events"`
		Total int `json:"total"`
	}

	// 1. Newest first with a limit
	resp, err := client.Get(ts.URL + "/api/events?limit=2")
	if err != nil {
		t.Fatalf("GET /api/events error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var page listed
	json.NewDecoder(resp.Body).Decode(&page)
	resp.Body.Close()

	if len(page.Events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(page.Events))
	}
	if page.Events[0].Kind != store.EventBurst || page.Events[1].Kind != store.EventSwipe {
		t.Errorf("order = %s, %s; want burst, swipe", page.Events[0].Kind, page.Events[1].Kind)
	}
	if page.Total != 4 {
		t.Errorf("total = %d, want 4", page.Total)
	}

	// 2. Filter by kind
	resp, _ = client.Get(ts.URL + "/api/events?kind=burst")
	var bursts listed
	json.NewDecoder(resp.Body).Decode(&bursts)
	resp.Body.Close()

	if len(bursts.Events) != 2 || bursts.Total != 2 {
		t.Errorf("burst filter: %d events, total %d; want 2, 2", len(bursts.Events), bursts.Total)
	}

	// 3. Bad limit
	resp, _ = client.Get(ts.URL + "/api/events?limit=lots")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	resp.Body.Close()

	// 4. Empty journal kind still returns an array
	resp, _ = client.Get(ts.URL + "/api/events?kind=toggle")
	var raw map[string]json.RawMessage
	json.NewDecoder(resp.Body).Decode(&raw)
	resp.Body.Close()
	if string(raw["events"]) != "[]" {
		t.Errorf("events = %s, want []", raw["events"])
	}

	// 5. Read only
	resp, _ = client.Post(ts.URL+"/api/events", "application/json", bytes.NewBufferString(`{}`))
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
	resp.Body.Close()
}

func TestAPI_SettingsRoundTrip(t *testing.T) {
	tuner := newFakeTuner()
	srv := New(Config{Tuner: tuner})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings", strings.NewReader(`{"gesture.zone_distance": "250"}`))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/settings error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	resp, _ = client.Get(ts.URL + "/api/settings")
	var got struct {
		Settings map[string]string `json:"settings"`
	}
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()

	if got.Settings["gesture.zone_distance"] != "250" {
		t.Errorf("zone_distance = %q, want 250", got.Settings["gesture.zone_distance"])
	}
}

func TestAPI_StateWebSocket(t *testing.T) {
	srv := New(Config{States: fakeStates{}})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Shutdown(context.Background())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/state"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var payload struct {
		State struct {
			Phase string `json:"phase"`
			Hands int    `json:"hands"`
		} `json:"state"`
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &payload); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if payload.State.Phase != "charging" || payload.State.Hands != 2 {
		t.Errorf("state = %+v, want charging with 2 hands", payload.State)
	}
	if payload.Timestamp == 0 {
		t.Error("expected a timestamp")
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}

func TestServer_ShutdownWithoutListen(t *testing.T) {
	srv := New(Config{States: fakeStates{}})
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	// Closing twice is harmless
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}
