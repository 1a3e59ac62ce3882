package server

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, sceneFile string) *Server {
	t.Helper()
	s, err := NewServer(0, sceneFile)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	s.config.NumWorkers = 2
	s.config.TileSize = 16
	t.Cleanup(s.Close)
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, newTestServer(t, ""), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
}

func TestHandleRender(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		name          string
		query         string
		width, height int
	}{
		{"small frame", "width=40&height=30", 40, 30},
		{"scaled", "width=20&height=10&scale=3", 60, 30},
		{"with hud", "width=64&height=48&hud=true&focus=10.5", 64, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/render?"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("Expected image/png, got %s", ct)
			}
			img, err := png.Decode(rec.Body)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if img.Bounds().Dx() != tt.width || img.Bounds().Dy() != tt.height {
				t.Errorf("Expected %dx%d, got %v", tt.width, tt.height, img.Bounds())
			}
		})
	}
}

func TestHandleRender_InvalidParams(t *testing.T) {
	s := newTestServer(t, "")

	queries := []string{
		"width=0",
		"width=abc",
		"height=5000",
		"scale=9",
		"focus=-1",
		"focus=NaN",
		"dof=0",
		"hud=maybe",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			rec := get(t, s, "/api/render?"+q)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400 for %q, got %d", q, rec.Code)
			}
		})
	}
}

func TestHandleInspect_Hit(t *testing.T) {
	s := newTestServer(t, "")

	// The center ray looks straight down +z at the blue sphere
	rec := get(t, s, "/api/inspect?x=20&y=15&width=40&height=30&focus=8&dof=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp InspectResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Hit || resp.Sphere != 2 {
		t.Fatalf("Expected hit on sphere 2, got %+v", resp)
	}
	if resp.Distance == nil || *resp.Distance < 10.5-1e-9 || *resp.Distance > 10.5+1e-9 {
		t.Errorf("Expected distance 10.5, got %v", resp.Distance)
	}
	if resp.BlurFactor != 1 || resp.BlurIntensity != 6 {
		t.Errorf("Expected full blur, got factor %v intensity %d", resp.BlurFactor, resp.BlurIntensity)
	}
}

func TestHandleInspect_Miss(t *testing.T) {
	s := newTestServer(t, "")

	rec := get(t, s, "/api/inspect?x=0&y=0&width=2000&height=2000")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	if raw["hit"] != false {
		t.Errorf("Expected miss, got %v", raw)
	}
	if _, ok := raw["distance"]; ok {
		t.Error("Expected no distance on a miss")
	}
	if raw["color"] != "#000000" {
		t.Errorf("Expected black, got %v", raw["color"])
	}
}

func TestHandleInspect_InvalidParams(t *testing.T) {
	s := newTestServer(t, "")

	queries := []string{
		"y=3",
		"x=3",
		"x=40&y=0&width=40&height=30",
		"x=0&y=-1",
		"x=0&y=0&dof=-2",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			rec := get(t, s, "/api/inspect?"+q)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400 for %q, got %d", q, rec.Code)
			}
		})
	}
}

func TestHandleSceneConfig(t *testing.T) {
	rec := get(t, newTestServer(t, ""), "/api/scene-config")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Spheres []struct {
			Radius float64 `json:"radius"`
			Color  string  `json:"color"`
		} `json:"spheres"`
		Defaults map[string]float64 `json:"defaults"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Spheres) != 3 {
		t.Fatalf("Expected 3 spheres, got %d", len(body.Spheres))
	}
	if body.Spheres[0].Color != "#ff0000" {
		t.Errorf("Expected first sphere red, got %s", body.Spheres[0].Color)
	}
	if body.Defaults["focus"] != 8 || body.Defaults["depthOfField"] != 2 {
		t.Errorf("Unexpected defaults %v", body.Defaults)
	}
}

func TestHandleReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.txt")
	if err := os.WriteFile(path, []byte("sphere 0 0 10 1 255 0 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, path)
	if got := len(s.currentScene().Spheres); got != 1 {
		t.Fatalf("Expected 1 sphere, got %d", got)
	}

	content := "sphere 0 0 10 1 255 0 0\nsphere 2 0 10 1 0 255 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := len(s.currentScene().Spheres); got != 2 {
		t.Errorf("Expected 2 spheres after reload, got %d", got)
	}

	// Failed reload keeps the current scene
	os.Remove(path)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	if got := len(s.currentScene().Spheres); got != 2 {
		t.Errorf("Expected scene kept, got %d spheres", got)
	}
}

func TestHandleReload_NoSceneFile(t *testing.T) {
	s := newTestServer(t, "")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestHandleConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.txt")
	if err := os.WriteFile(path, []byte("sphere 0 0 10 1 255 0 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, path)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		rec := get(t, s, "/api/console")
		var messages []ConsoleMessage
		if err := json.NewDecoder(rec.Body).Decode(&messages); err != nil {
			t.Fatal(err)
		}
		for _, msg := range messages {
			if strings.Contains(msg.Message, "Loaded 1 spheres") {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("Expected load message in console")
}

func TestParseParams(t *testing.T) {
	values := url.Values{"n": {"5"}, "bad": {"x"}, "f": {"2.5"}}

	if got, err := parseIntParam(values, "n", 1, 0, 10); err != nil || got != 5 {
		t.Errorf("parseIntParam(n) = %d, %v", got, err)
	}
	if got, err := parseIntParam(values, "missing", 7, 0, 10); err != nil || got != 7 {
		t.Errorf("parseIntParam(missing) = %d, %v", got, err)
	}
	if _, err := parseIntParam(values, "n", 1, 6, 10); err == nil {
		t.Error("Expected range error")
	}
	if _, err := parseIntParam(values, "bad", 1, 0, 10); err == nil {
		t.Error("Expected parse error")
	}
	if got, err := parseFloatParam(values, "f", 0, 0, 10); err != nil || got != 2.5 {
		t.Errorf("parseFloatParam(f) = %v, %v", got, err)
	}
	if _, err := parseFloatParam(values, "f", 0, 3, 10); err == nil {
		t.Error("Expected range error")
	}
}

func TestHandleRender_ReusesRenderers(t *testing.T) {
	s := newTestServer(t, "")

	for _, q := range []string{"width=40&height=30&focus=5", "width=40&height=30&dof=7", "width=20&height=10"} {
		if rec := get(t, s, "/api/render?"+q); rec.Code != http.StatusOK {
			t.Fatalf("Expected 200 for %q, got %d", q, rec.Code)
		}
	}
	if s.renderers.created != 1 {
		t.Errorf("Expected sequential requests to share 1 renderer, got %d", s.renderers.created)
	}

	// Per-request focus does not leak into the next request
	rec := get(t, s, "/api/inspect?x=20&y=15&width=40&height=30")
	var resp InspectResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Focus != 8 || resp.DepthOfField != 2 {
		t.Errorf("Expected default focus 8/2, got %v/%v", resp.Focus, resp.DepthOfField)
	}
}

func TestHandleInspect_AfterReloadUsesNewScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.txt")
	if err := os.WriteFile(path, []byte("sphere 0 0 12 1.5 0 0 255\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, path)

	inspectDistance := func() float64 {
		t.Helper()
		rec := get(t, s, "/api/inspect?x=20&y=15&width=40&height=30")
		var resp InspectResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Distance == nil {
			t.Fatalf("Expected hit, got %+v", resp)
		}
		return *resp.Distance
	}

	if d := inspectDistance(); d < 10.5-1e-9 || d > 10.5+1e-9 {
		t.Fatalf("Expected distance 10.5, got %v", d)
	}

	if err := os.WriteFile(path, []byte("sphere 0 0 6 1 0 0 255\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	if d := inspectDistance(); d < 5-1e-9 || d > 5+1e-9 {
		t.Errorf("Expected distance 5 after reload, got %v", d)
	}
}
