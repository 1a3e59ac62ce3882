package server

import (
	"bytes"
	"errors"
	"image/png"
	"net/http"
	"strconv"

	"github.com/df07/go-dof-raytracer/pkg/export"
	"github.com/df07/go-dof-raytracer/pkg/overlay"
	"github.com/df07/go-dof-raytracer/pkg/renderer"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Width  int
	Height int
	Focus  renderer.FocusState
	Scale  int
	HUD    bool
}

// parseRenderRequest parses and validates render query parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	values := r.URL.Query()
	req := &RenderRequest{}

	var err error
	if req.Width, err = parseIntParam(values, "width", 800, minDimension, maxDimension); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 600, minDimension, maxDimension); err != nil {
		return nil, err
	}
	if req.Scale, err = parseIntParam(values, "scale", 1, 1, maxScale); err != nil {
		return nil, err
	}
	if req.HUD, err = parseBoolParam(values, "hud", false); err != nil {
		return nil, err
	}
	if req.Focus, err = s.parseFocusParams(values); err != nil {
		return nil, err
	}
	return req, nil
}

// handleRender renders one frame and responds with a PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	rt, err := s.checkoutRenderer(r.Context(), req.Focus)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	img, err := rt.RenderFrameContext(r.Context(), req.Width, req.Height)
	focus, stats := rt.Focus(), rt.LastStats()
	s.renderers.release(rt)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, r.Context().Err()) {
			// Client went away
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "Render error: "+err.Error())
		return
	}

	if req.HUD {
		hud, err := overlay.NewHUD(14)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Overlay error: "+err.Error())
			return
		}
		hud.Draw(img, overlay.FrameLines(focus, stats))
		hud.Close()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, export.Scale(img, req.Scale, export.Nearest)); err != nil {
		writeError(w, http.StatusInternalServerError, "Encode error: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(stats.FrameTime().Milliseconds(), 10))
	w.Header().Set("X-Hit-Pixels", strconv.Itoa(stats.HitPixels))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
