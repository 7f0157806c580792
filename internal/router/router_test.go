package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bunny-happiness/internal/platform/logger"
	"bunny-happiness/internal/router"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app := router.NewApp(router.Options{
		Log:              logger.New(logger.Options{Level: logger.Error}),
		DispatchInterval: 20 * time.Millisecond,
	})
	if err := app.Start(ctx); err != nil {
		t.Fatalf("start app: %v", err)
	}

	ts := httptest.NewServer(app.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_HappinessPipeline(t *testing.T) {
	ts := newTestServer(t)

	// 1) Alta de dos conejos
	b1 := createBunny(t, ts.URL, map[string]any{"name": "Pancho", "color": "brown"})
	b2 := createBunny(t, ts.URL, map[string]any{"name": "Luna", "color": "white"})

	// 2) Feed carrot: 202 y efecto async
	feedID := submitEvent(t, ts.URL, b1, map[string]any{"type": "feed", "feed_type": "carrot"})
	feed := waitTerminal(t, ts.URL, feedID)
	if feed["status"] != "finished" {
		t.Fatalf("feed status = %v, body=%v", feed["status"], feed)
	}
	if got := feed["new_happiness"].(float64); got != 8 {
		t.Errorf("new_happiness = %v, want 8 (5 + carrot 3)", got)
	}
	if got := feed["delta_happiness"].(float64); got != 3 {
		t.Errorf("delta_happiness = %v, want 3", got)
	}

	// 3) Play: los dos lados suben 2, sin bonus la primera vez
	playID := submitEvent(t, ts.URL, b1, map[string]any{"type": "play", "partner_bunny_id": b2})
	play := waitTerminal(t, ts.URL, playID)
	if play["status"] != "finished" {
		t.Fatalf("play status = %v, body=%v", play["status"], play)
	}
	if got := play["new_happiness"].(float64); got != 10 {
		t.Errorf("new_happiness = %v, want 10", got)
	}
	if play["playmate_bonus"].(bool) {
		t.Error("first play should not have the playmate bonus")
	}
	if got := play["new_partner_happiness"].(float64); got != 7 {
		t.Errorf("new_partner_happiness = %v, want 7", got)
	}

	// 4) Replay inmediato: rechazado por timing, sin efectos
	replayID := submitEvent(t, ts.URL, b1, map[string]any{"type": "play", "partner_bunny_id": b2})
	replay := waitTerminal(t, ts.URL, replayID)
	if replay["status"] != "rejected" {
		t.Fatalf("replay status = %v, want rejected", replay["status"])
	}
	if reason, _ := replay["rejection_reason"].(string); !strings.Contains(reason, "wait at least") {
		t.Errorf("rejection_reason = %q, want timing message", reason)
	}

	var bunny map[string]any
	st, _ := doReq(t, ts.URL, "GET", "/bunnies/"+b1, "", nil, &bunny)
	if st != http.StatusOK {
		t.Fatalf("get bunny: %d", st)
	}
	if got := bunny["happiness"].(float64); got != 10 {
		t.Errorf("happiness after rejection = %v, must stay 10", got)
	}

	// 5) Payloads inválidos
	if st, _ := doReq(t, ts.URL, "POST", "/bunnies/"+b1+"/events", "", map[string]any{"type": "groom"}, nil); st != http.StatusBadRequest {
		t.Errorf("unknown event type = %d, want 400", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/bunnies/ghost/events", "", map[string]any{"type": "feed", "feed_type": "lettuce"}, nil); st != http.StatusNotFound {
		t.Errorf("event for missing bunny = %d, want 404", st)
	}

	// 6) Scan de inactividad: solo el conejo sin actividad queda idle
	b3 := createBunny(t, ts.URL, map[string]any{"name": "Nieve", "color": "spotted"})

	var scan struct {
		IdleCount   int `json:"idleCount"`
		IdleBunnies []struct {
			ID string `json:"id"`
		} `json:"idleBunnies"`
	}
	if st, body := doReq(t, ts.URL, "POST", "/idle-scan", "", nil, &scan); st != http.StatusOK {
		t.Fatalf("idle scan = %d body=%s", st, body)
	}
	if scan.IdleCount != 1 || len(scan.IdleBunnies) != 1 || scan.IdleBunnies[0].ID != b3 {
		t.Fatalf("scan = %+v, want only %s idle", scan, b3)
	}

	// 7) Summary converge: 10 + 7 + (5-1 tras el idle) = 21
	waitSummary(t, ts.URL, 3, 21)

	// 8) Recalculate requiere auth y coincide con el incremental
	if st, _ := doReq(t, ts.URL, "POST", "/summary/recalculate", "", nil, nil); st != http.StatusUnauthorized {
		t.Errorf("recalculate without auth = %d, want 401", st)
	}

	var recalc struct {
		Success bool `json:"success"`
		Summary struct {
			TotalBunnies   int `json:"total_bunnies"`
			TotalHappiness int `json:"total_happiness"`
		} `json:"summary"`
	}
	if st, body := doReq(t, ts.URL, "POST", "/summary/recalculate", "admin", nil, &recalc); st != http.StatusOK {
		t.Fatalf("recalculate = %d body=%s", st, body)
	}
	if !recalc.Success || recalc.Summary.TotalBunnies != 3 || recalc.Summary.TotalHappiness != 21 {
		t.Errorf("recalculate = %+v, rescan must match the incremental state", recalc)
	}

	// 9) Baja: el summary descuenta el snapshot del borrado
	if st, _ := doReq(t, ts.URL, "DELETE", "/bunnies/"+b3, "", nil, nil); st != http.StatusNoContent {
		t.Fatalf("delete bunny: expected 204")
	}
	waitSummary(t, ts.URL, 2, 17)
}

func TestHTTP_Configuration(t *testing.T) {
	ts := newTestServer(t)

	var cfg map[string]any
	if st, _ := doReq(t, ts.URL, "GET", "/configuration", "", nil, &cfg); st != http.StatusOK {
		t.Fatalf("get configuration: %d", st)
	}
	if got := cfg["play_score"].(float64); got != 2 {
		t.Errorf("play_score = %v, want seeded default 2", got)
	}

	update := map[string]any{
		"reward_score": 1,
		"play_score":   2,
		"meals":        map[string]any{"lettuce": 1, "carrot": 5},
		"activities":   map[string]any{"petting": 1, "grooming": 1},
	}

	if st, _ := doReq(t, ts.URL, "PUT", "/configuration", "", update, nil); st != http.StatusUnauthorized {
		t.Errorf("update without auth = %d, want 401", st)
	}
	if st, body := doReq(t, ts.URL, "PUT", "/configuration", "admin", update, nil); st != http.StatusOK {
		t.Fatalf("update = %d body=%s", st, body)
	}

	var after struct {
		Meals struct {
			Carrot int `json:"carrot"`
		} `json:"meals"`
	}
	if st, _ := doReq(t, ts.URL, "GET", "/configuration", "", nil, &after); st != http.StatusOK {
		t.Fatal("get configuration after update")
	}
	if after.Meals.Carrot != 5 {
		t.Errorf("carrot = %d, want administered 5", after.Meals.Carrot)
	}
}

func TestHTTP_SummaryLiveWebsocket(t *testing.T) {
	ts := newTestServer(t)

	createBunny(t, ts.URL, map[string]any{"name": "Pancho"})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/summary/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// El primer mensaje es el snapshot actual.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snapshot struct {
		TotalBunnies int `json:"total_bunnies"`
	}
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snapshot.TotalBunnies != 1 {
		t.Errorf("snapshot bunnies = %d, want 1", snapshot.TotalBunnies)
	}

	// Un alta nueva empuja la próxima versión.
	createBunny(t, ts.URL, map[string]any{"name": "Luna"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var next struct {
		TotalBunnies int `json:"total_bunnies"`
	}
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if next.TotalBunnies != 2 {
		t.Errorf("live update bunnies = %d, want 2", next.TotalBunnies)
	}
}

func createBunny(t *testing.T, baseURL string, payload map[string]any) string {
	t.Helper()

	var out struct {
		ID string `json:"id"`
	}
	st, body := doReq(t, baseURL, "POST", "/bunnies", "", payload, &out)
	if st != http.StatusCreated || out.ID == "" {
		t.Fatalf("create bunny = %d body=%s", st, body)
	}
	return out.ID
}

func submitEvent(t *testing.T, baseURL, bunnyID string, payload map[string]any) string {
	t.Helper()

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	st, body := doReq(t, baseURL, "POST", "/bunnies/"+bunnyID+"/events", "", payload, &out)
	if st != http.StatusAccepted || out.ID == "" {
		t.Fatalf("submit event = %d body=%s", st, body)
	}
	if out.Status != "pending" {
		t.Fatalf("submitted status = %q, want pending", out.Status)
	}
	return out.ID
}

// waitTerminal polea el evento hasta que llegue a un status absorbente.
func waitTerminal(t *testing.T, baseURL, eventID string) map[string]any {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var out map[string]any
		st, body := doReq(t, baseURL, "GET", "/events/"+eventID, "", nil, &out)
		if st != http.StatusOK {
			t.Fatalf("get event = %d body=%s", st, body)
		}
		switch out["status"] {
		case "finished", "rejected", "error":
			return out
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("event %s did not reach a terminal status", eventID)
	return nil
}

func waitSummary(t *testing.T, baseURL string, wantBunnies, wantHappiness int) {
	t.Helper()

	var last []byte
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var out struct {
			TotalBunnies   int `json:"total_bunnies"`
			TotalHappiness int `json:"total_happiness"`
		}
		st, body := doReq(t, baseURL, "GET", "/summary", "", nil, &out)
		if st != http.StatusOK {
			t.Fatalf("get summary = %d body=%s", st, body)
		}
		if out.TotalBunnies == wantBunnies && out.TotalHappiness == wantHappiness {
			return
		}
		last = body
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("summary did not converge to %d/%d, last=%s", wantBunnies, wantHappiness, last)
}

func doReq(t *testing.T, baseURL, method, path, userID string, payload any, out any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if out != nil && len(raw) > 0 && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s %s: %v body=%s", method, path, err, raw)
		}
	}
	return resp.StatusCode, raw
}
