package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/felixgeelhaar/matekkaland/internal/app"
	"github.com/felixgeelhaar/matekkaland/internal/config"
	"github.com/felixgeelhaar/matekkaland/internal/content"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/player"
	"github.com/felixgeelhaar/matekkaland/internal/quiz"
)

// newTestMachine builds a machine with an in-memory store and no content
// provider. spawn controls when background work runs.
func newTestMachine(t *testing.T, seed *domain.Player, spawn func(func())) *app.Machine {
	t.Helper()

	engine := quiz.NewEngine(content.Unavailable{}, nil, quiz.WithLogger(discardLogger()))
	m, err := app.New(context.Background(), app.Deps{
		Store:   player.NewMemoryStore(seed),
		Engine:  engine,
		Content: content.Unavailable{},
		Logger:  discardLogger(),
	}, app.WithSpawn(spawn))
	if err != nil {
		t.Fatalf("create machine: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func newTestServer(t *testing.T, m Machine) *Server {
	t.Helper()

	cfg := config.DefaultLocalConfig()
	cfg.Daemon.Port = 0

	server, err := NewServer(ServerConfig{Config: cfg, Machine: m, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("create server: %v", err)
	}
	return server
}

// setupTestServer creates a server over a machine that runs background work
// inline.
func setupTestServer(t *testing.T, seed *domain.Player) *Server {
	t.Helper()
	return newTestServer(t, newTestMachine(t, seed, func(f func()) { f() }))
}

// deferredMachine holds background work until the next dispatch and runs it
// just before delegating, so results land between the request arriving and
// the intent being applied.
type deferredMachine struct {
	*app.Machine
	queued []func()
}

func (d *deferredMachine) spawn(f func()) { d.queued = append(d.queued, f) }

func (d *deferredMachine) Dispatch(in app.Intent) (app.Snapshot, bool) {
	queued := d.queued
	d.queued = nil
	for _, f := range queued {
		f()
	}
	return d.Machine.Dispatch(in)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestNewServer_RequiresMachine(t *testing.T) {
	if _, err := NewServer(ServerConfig{}); err == nil {
		t.Error("NewServer() without a machine should fail")
	}
}

func TestHealthEndpoint(t *testing.T) {
	w := do(t, setupTestServer(t, nil), http.MethodGet, "/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if resp := decode[map[string]any](t, w); resp["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", resp["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	w := do(t, setupTestServer(t, nil), http.MethodGet, "/v1/status", "")
	resp := decode[map[string]any](t, w)

	if resp["status"] != "running" {
		t.Errorf("status = %v, want running", resp["status"])
	}
	if resp["screen"] != string(app.ScreenThemeSelect) {
		t.Errorf("screen = %v, want THEME_SELECT", resp["screen"])
	}
	if resp["storage_backend"] != "json" {
		t.Errorf("storage_backend = %v", resp["storage_backend"])
	}
}

func TestStateEndpoint(t *testing.T) {
	w := do(t, setupTestServer(t, nil), http.MethodGet, "/v1/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[map[string]any](t, w)
	if resp["screen"] != "THEME_SELECT" {
		t.Errorf("screen = %v", resp["screen"])
	}
	design, _ := resp["design"].(map[string]any)
	if design["theme"] != "girl" {
		t.Errorf("design = %v, want default girl", resp["design"])
	}
}

func TestStateEndpoint_MethodNotAllowed(t *testing.T) {
	w := do(t, setupTestServer(t, nil), http.MethodPost, "/v1/state", "{}")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestIntentEndpoint_Onboarding(t *testing.T) {
	s := setupTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/v1/intents", `{"kind":"select_design_theme","payload":{"theme":"boy"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decode[map[string]any](t, w)
	if resp["accepted"] != true {
		t.Errorf("accepted = %v, want true", resp["accepted"])
	}

	w = do(t, s, http.MethodPost, "/v1/intents", `{"kind":"submit_profile","payload":{"name":"Bence","avatar":"🤖"}}`)
	resp = decode[map[string]any](t, w)
	snap := resp["snapshot"].(map[string]any)
	if snap["screen"] != "DASHBOARD" {
		t.Errorf("screen = %v, want DASHBOARD", snap["screen"])
	}
	if snap["player"].(map[string]any)["name"] != "Bence" {
		t.Errorf("player = %v", snap["player"])
	}
}

func TestIntentEndpoint_NotAccepted(t *testing.T) {
	w := do(t, setupTestServer(t, nil), http.MethodPost, "/v1/intents", `{"kind":"open_album"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[map[string]any](t, w)
	if resp["accepted"] != false {
		t.Errorf("accepted = %v, want false", resp["accepted"])
	}
}

func TestIntentEndpoint_BackgroundDeliveryNotCountedAsAccepted(t *testing.T) {
	seed, err := player.New("Anna", "🦊", domain.DesignGirl)
	if err != nil {
		t.Fatalf("player.New() error = %v", err)
	}
	d := &deferredMachine{}
	d.Machine = newTestMachine(t, seed, d.spawn)
	s := newTestServer(t, d)

	for _, body := range []string{
		`{"kind":"open_play"}`,
		`{"kind":"select_adventure","payload":{"adventure":"space"}}`,
		`{"kind":"confirm_topics","payload":{"topics":["addition"]}}`,
	} {
		if resp := decode[map[string]any](t, do(t, s, http.MethodPost, "/v1/intents", body)); resp["accepted"] != true {
			t.Fatalf("%s not accepted", body)
		}
	}
	if len(d.queued) != 1 {
		t.Fatalf("queued %d tasks, want the question load", len(d.queued))
	}

	// The question load delivers during this request; ReturnHome itself has
	// no transition from the quiz.
	w := do(t, s, http.MethodPost, "/v1/intents", `{"kind":"return_home"}`)
	resp := decode[map[string]any](t, w)
	if resp["accepted"] != false {
		t.Errorf("accepted = %v, want false", resp["accepted"])
	}
	snap := resp["snapshot"].(map[string]any)
	if snap["screen"] != "QUIZ_ACTIVE" {
		t.Errorf("screen = %v, want QUIZ_ACTIVE", snap["screen"])
	}
	if state := snap["state"].(map[string]any); state["loading"] != false {
		t.Errorf("loading = %v, want the delivered quiz", state["loading"])
	}
}

func TestIntentEndpoint_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"kind":`},
		{"missing kind", `{"payload":{}}`},
		{"unknown kind", `{"kind":"teleport"}`},
		{"bad payload", `{"kind":"answer","payload":{"option":"eight"}}`},
	}
	s := setupTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/v1/intents", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if resp := decode[map[string]any](t, w); resp["error"] == nil {
				t.Errorf("response has no error field: %v", resp)
			}
		})
	}
}

func TestCatalogEndpoint(t *testing.T) {
	w := do(t, setupTestServer(t, nil), http.MethodGet, "/v1/catalog", "")
	resp := decode[CatalogResponse](t, w)

	if len(resp.Stickers) != 12 || len(resp.AlbumThemes) != 6 || len(resp.Adventures) != 5 {
		t.Errorf("catalog sizes = %d stickers, %d album themes, %d adventures",
			len(resp.Stickers), len(resp.AlbumThemes), len(resp.Adventures))
	}
	if len(resp.Avatars) != 14 || len(resp.Topics) != 7 || len(resp.Designs) != 2 {
		t.Errorf("catalog sizes = %d avatars, %d topics, %d designs",
			len(resp.Avatars), len(resp.Topics), len(resp.Designs))
	}
	if len(resp.Intents) != len(app.IntentKinds()) {
		t.Errorf("intents = %v", resp.Intents)
	}
}

func TestPlayerEndpoint(t *testing.T) {
	w := do(t, setupTestServer(t, nil), http.MethodGet, "/v1/player", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status without player = %d, want 404", w.Code)
	}

	p, _ := player.New("Anna", "🦊", domain.DesignGirl)
	p.Stats.CorrectAnswers = 3
	p.Stats.WrongAnswers = 1
	p.Stats.StickersCollected = []domain.StickerID{"s1", "s2", "s3"}

	w = do(t, setupTestServer(t, p), http.MethodGet, "/v1/player", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[PlayerResponse](t, w)
	if resp.Player.Name != "Anna" {
		t.Errorf("Player.Name = %q", resp.Player.Name)
	}
	if resp.Summary.Accuracy != 75 || resp.Summary.AlbumProgress != 25 {
		t.Errorf("Summary = %+v", resp.Summary)
	}
}
