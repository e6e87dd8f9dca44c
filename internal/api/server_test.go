package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lcm-pool/internal/events"
	"lcm-pool/internal/metrics"
	"lcm-pool/internal/worker"

	"golang.org/x/net/websocket"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	s, err := NewServer(":0", worker.PoolConfig{NumWorkers: 2, Bound: 10000})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go s.relayEvents(ctx)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		s.Close()
	})
	return s, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func TestSubmitAndShutdown(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/numbers", NumbersRequest{Numbers: []uint64{7, 9, 5, 10001, 0}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	nr := decode[NumbersResponse](t, resp)
	if nr.Accepted != 3 {
		t.Errorf("expected 3 accepted, got %d", nr.Accepted)
	}
	if len(nr.Rejected) != 2 {
		t.Errorf("expected 2 rejected, got %d", len(nr.Rejected))
	}

	resp = postJSON(t, ts.URL+"/api/shutdown", struct{}{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	sr := decode[ShutdownResponse](t, resp)
	if sr.LCM != "315" {
		t.Errorf("expected LCM 315, got %s", sr.LCM)
	}
	if sr.Batch != 1 {
		t.Errorf("expected batch 1, got %d", sr.Batch)
	}
	if len(sr.Workers) != 2 {
		t.Errorf("expected 2 workers, got %d", len(sr.Workers))
	}

	// the next batch starts from an empty table
	postJSON(t, ts.URL+"/api/numbers", NumbersRequest{Numbers: []uint64{4, 6}}).Body.Close()
	sr = decode[ShutdownResponse](t, postJSON(t, ts.URL+"/api/shutdown", struct{}{}))
	if sr.LCM != "12" {
		t.Errorf("expected LCM 12, got %s", sr.LCM)
	}
	if sr.Batch != 2 {
		t.Errorf("expected batch 2, got %d", sr.Batch)
	}
}

func TestStatusAndMetrics(t *testing.T) {
	_, ts := newTestServer(t)

	postJSON(t, ts.URL+"/api/numbers", NumbersRequest{Numbers: []uint64{2, 3, 20000}}).Body.Close()

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET status failed: %v", err)
	}
	status := decode[StatusResponse](t, resp)
	if !status.Running {
		t.Error("expected pool to be running")
	}
	if status.Workers != 2 || status.Bound != 10000 {
		t.Errorf("unexpected status: %+v", status)
	}
	if len(status.WorkerStates) != 2 {
		t.Errorf("expected 2 worker states, got %d", len(status.WorkerStates))
	}

	resp, err = http.Get(ts.URL + "/api/metrics")
	if err != nil {
		t.Fatalf("GET metrics failed: %v", err)
	}
	snap := decode[metrics.Snapshot](t, resp)
	if snap.Submitted != 2 {
		t.Errorf("expected 2 submitted, got %d", snap.Submitted)
	}
	if snap.Rejected != 1 {
		t.Errorf("expected 1 rejected, got %d", snap.Rejected)
	}
}

func TestMethodAndBodyValidation(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		method   string
		path     string
		body     string
		expected int
	}{
		{http.MethodGet, "/api/numbers", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/numbers", "{not json", http.StatusBadRequest},
		{http.MethodGet, "/api/shutdown", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/status", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/metrics", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
		if err != nil {
			t.Fatalf("failed to build request: %v", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s failed: %v", tt.method, tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.expected {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.expected, resp.StatusCode)
		}
	}
}

func TestWebSocketRelaysEvents(t *testing.T) {
	s, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, err := websocket.Dial(wsURL, "", ts.URL)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer ws.Close()

	deadline := time.Now().Add(time.Second)
	for s.status().WSClients == 0 {
		if time.Now().After(deadline) {
			t.Fatal("websocket client was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	postJSON(t, ts.URL+"/api/numbers", NumbersRequest{Numbers: []uint64{12}}).Body.Close()

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			t.Fatalf("failed to receive event: %v", err)
		}
		var ev events.Event
		if err := json.Unmarshal([]byte(msg), &ev); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		if ev.Type == events.EventNumberFactored {
			if ev.Data.Number != 12 {
				t.Errorf("expected number 12, got %d", ev.Data.Number)
			}
			return
		}
	}
}
