package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ringside/internal/combat"
	"ringside/internal/input"
)

// newTestServer spins up the router over a real engine with rate limits
// opened wide so tests never trip them.
func newTestServer(t *testing.T) (*httptest.Server, *combat.Engine) {
	t.Helper()
	moves, err := combat.LoadMoves(combat.DefaultMoves())
	if err != nil {
		t.Fatalf("load moves: %v", err)
	}
	engine := combat.NewEngine(combat.DefaultConfig(), moves)

	router := NewRouter(RouterConfig{
		Engine:          engine,
		RateLimitConfig: &RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		DisableLogging:  true,
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, engine
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}

func TestFighterJoinAndState(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/fighter/join", map[string]interface{}{
		"id": "ryu", "x": 100, "facing": "right",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join status = %d", resp.StatusCode)
	}
	var joined map[string]interface{}
	decodeBody(t, resp, &joined)
	if joined["id"] != "ryu" {
		t.Errorf("joined id = %v", joined["id"])
	}
	if joined["health"].(float64) != 1000 {
		t.Errorf("joined health = %v, want 1000", joined["health"])
	}

	// Duplicate id conflicts.
	resp = postJSON(t, ts.URL+"/api/fighter/join", map[string]interface{}{
		"id": "ryu", "x": 200, "facing": "left",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate join status = %d, want 409", resp.StatusCode)
	}

	// Missing id is a bad request.
	resp = postJSON(t, ts.URL+"/api/fighter/join", map[string]interface{}{"x": 0})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty id join status = %d, want 400", resp.StatusCode)
	}
}

func TestInputEndpoint(t *testing.T) {
	ts, engine := newTestServer(t)
	if _, err := engine.AddFighter("ryu", 100, input.FacingRight); err != nil {
		t.Fatal(err)
	}

	resp := postJSON(t, ts.URL+"/api/input", map[string]interface{}{
		"fighter": "ryu",
		"device":  "keyboard",
		"state": map[string]interface{}{
			"right":   true,
			"buttons": map[string]bool{"lp": true},
		},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("input status = %d", resp.StatusCode)
	}

	// The device state lands on the next tick.
	engine.Step()
	ryu := engine.Fighter("ryu")
	if ryu.State != combat.StateAttacking {
		t.Errorf("ryu state = %v, want attacking after LP over HTTP", ryu.State)
	}

	resp = postJSON(t, ts.URL+"/api/input", map[string]interface{}{
		"fighter": "nobody",
		"device":  "keyboard",
		"state":   map[string]interface{}{},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown fighter status = %d, want 404", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/api/input", map[string]interface{}{
		"fighter": "ryu",
		"device":  "dance-mat",
		"state":   map[string]interface{}{},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown device status = %d, want 400", resp.StatusCode)
	}
}

func TestMovesEndpoints(t *testing.T) {
	ts, engine := newTestServer(t)
	if _, err := engine.AddFighter("ryu", 100, input.FacingRight); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/api/moves")
	if err != nil {
		t.Fatal(err)
	}
	var moves []map[string]interface{}
	decodeBody(t, resp, &moves)
	if len(moves) != 4 {
		t.Fatalf("moves = %d, want 4", len(moves))
	}

	var ready map[string]bool
	resp, err = http.Get(ts.URL + "/api/moves/fireball/ready?fighter=ryu")
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp, &ready)
	if !ready["ready"] {
		t.Error("fireball (no cost) should be ready from neutral")
	}

	resp, err = http.Get(ts.URL + "/api/moves/burst-drive/ready?fighter=ryu")
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp, &ready)
	if ready["ready"] {
		t.Error("burst-drive should be gated at 0 meter")
	}
}

func TestStateReflectsEngine(t *testing.T) {
	ts, engine := newTestServer(t)
	if _, err := engine.AddFighter("ryu", 100, input.FacingRight); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.AddFighter("ken", 160, input.FacingLeft); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		engine.Step()
	}

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatal(err)
	}
	var snap combat.MatchSnapshot
	decodeBody(t, resp, &snap)
	if snap.Tick != 3 {
		t.Errorf("state tick = %d, want 3", snap.Tick)
	}
	if len(snap.Fighters) != 2 {
		t.Errorf("state fighters = %d, want 2", len(snap.Fighters))
	}
}

func TestRoundReset(t *testing.T) {
	ts, engine := newTestServer(t)
	if _, err := engine.AddFighter("ryu", 100, input.FacingRight); err != nil {
		t.Fatal(err)
	}
	engine.Fighter("ryu").Health = 500

	resp := postJSON(t, ts.URL+"/api/round/reset", map[string]interface{}{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d", resp.StatusCode)
	}
	if h := engine.Fighter("ryu").Health; h != 1000 {
		t.Errorf("health = %d after reset, want 1000", h)
	}
}

func TestRateLimiterRejects(t *testing.T) {
	moves, _ := combat.LoadMoves(combat.DefaultMoves())
	engine := combat.NewEngine(combat.DefaultConfig(), moves)
	router := NewRouter(RouterConfig{
		Engine:          engine,
		RateLimitConfig: &RateLimitConfig{RequestsPerSecond: 1, Burst: 2, CleanupInterval: time.Minute},
		DisableLogging:  true,
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	codes := make(map[int]int)
	for i := 0; i < 5; i++ {
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		codes[resp.StatusCode]++
	}
	if codes[http.StatusTooManyRequests] == 0 {
		t.Error("burst of 5 over a burst-2 limiter never hit 429")
	}
	if codes[http.StatusOK] == 0 {
		t.Error("limiter rejected everything, burst should pass")
	}
}
