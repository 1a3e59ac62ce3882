package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/df07/go-dof-raytracer/pkg/core"
	"github.com/df07/go-dof-raytracer/pkg/loaders"
	"github.com/df07/go-dof-raytracer/pkg/renderer"
	"github.com/df07/go-dof-raytracer/pkg/scene"
)

// Request limits
const (
	minDimension = 1
	maxDimension = 2000
	maxScale     = 4
	maxDistance  = 1e6
	minDOF       = 1e-3

	// Renderers shared across requests; each renders one request at a time
	maxRenderers = 2
)

// Server serves rendered frames and pixel inspection over HTTP
type Server struct {
	port      int
	sceneFile string
	config    renderer.RendererConfig
	console   *Console
	logger    core.Logger
	renderers *rendererPool

	mu    sync.RWMutex
	scene *scene.Scene
}

// NewServer creates a web server. An empty sceneFile serves the built-in
// scene.
func NewServer(port int, sceneFile string) (*Server, error) {
	console := NewConsole(200)
	s := &Server{
		port:      port,
		sceneFile: sceneFile,
		config:    renderer.DefaultRendererConfig(),
		console:   console,
		logger:    NewWebLogger("server", console.Input()),
		scene:     scene.NewDefaultScene(),
	}

	if sceneFile != "" {
		loaded, err := loaders.LoadScene(sceneFile, s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load scene: %w", err)
		}
		s.scene = loaded
	}
	s.renderers = newRendererPool(maxRenderers, s.createRenderer)
	return s, nil
}

// Close stops the shared renderers
func (s *Server) Close() {
	s.renderers.Close()
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/render", s.handleRender)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	mux.HandleFunc("GET /api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("GET /api/console", s.handleConsole)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// currentScene returns the scene requests render against
func (s *Server) currentScene() *scene.Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene
}

func (s *Server) createRenderer() (*renderer.Renderer, error) {
	return renderer.NewRenderer(s.currentScene(), s.config, s.logger)
}

// checkoutRenderer takes a shared renderer, brings it up to date with the
// current scene and applies the request's focus. Callers release it with
// s.renderers.release.
func (s *Server) checkoutRenderer(ctx context.Context, focus renderer.FocusState) (*renderer.Renderer, error) {
	rt, err := s.renderers.acquire(ctx)
	if err != nil {
		return nil, err
	}

	if sc := s.currentScene(); rt.Scene() != sc {
		err = rt.SetScene(sc)
	}
	if err == nil {
		err = rt.SetFocus(focus)
	}
	if err != nil {
		s.renderers.release(rt)
		return nil, err
	}
	return rt, nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReload re-reads the scene file. The current scene stays on failure.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.sceneFile == "" {
		writeError(w, http.StatusBadRequest, "No scene file configured")
		return
	}

	loaded, err := loaders.LoadScene(s.sceneFile, s.logger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Reload failed: "+err.Error())
		return
	}

	s.mu.Lock()
	s.scene = loaded
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"spheres": len(loaded.Spheres)})
}

// handleSceneConfig returns the scene, focus defaults and request limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sc := s.currentScene()
	focus := s.config.Focus

	spheres := make([]map[string]interface{}, len(sc.Spheres))
	for i, sphere := range sc.Spheres {
		spheres[i] = map[string]interface{}{
			"center": vecArray(sphere.Center),
			"radius": sphere.Radius,
			"color":  hexColor(sphere.Color),
		}
	}

	response := map[string]interface{}{
		"spheres": spheres,
		"light": map[string]interface{}{
			"position": vecArray(sc.Light.Position),
			"color":    hexColor(sc.Light.Color),
		},
		"camera": map[string]interface{}{
			"position":    vecArray(sc.Camera.Position),
			"focalLength": sc.Camera.FocalLength,
		},
		"defaults": map[string]interface{}{
			"width":        800,
			"height":       600,
			"focus":        focus.FocusDistance,
			"depthOfField": focus.DepthOfField,
			"focusStep":    focus.FocusStep,
		},
		"limits": map[string]interface{}{
			"width":        map[string]int{"min": minDimension, "max": maxDimension},
			"height":       map[string]int{"min": minDimension, "max": maxDimension},
			"scale":        map[string]int{"min": 1, "max": maxScale},
			"focus":        map[string]float64{"min": 0, "max": maxDistance},
			"depthOfField": map[string]float64{"min": minDOF, "max": maxDistance},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// handleConsole returns recent log messages
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.console.Messages())
}

// parseFocusParams reads focus and dof, falling back to the server defaults
func (s *Server) parseFocusParams(values url.Values) (renderer.FocusState, error) {
	focus := s.config.Focus
	var err error
	if focus.FocusDistance, err = parseFloatParam(values, "focus", focus.FocusDistance, 0, maxDistance); err != nil {
		return focus, err
	}
	if focus.DepthOfField, err = parseFloatParam(values, "dof", focus.DepthOfField, minDOF, maxDistance); err != nil {
		return focus, err
	}
	return focus, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if !(parsed >= min && parsed <= max) {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
