package server

import (
	"net/http"

	"github.com/df07/go-dof-raytracer/pkg/renderer"
)

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	X             int         `json:"x"`
	Y             int         `json:"y"`
	Hit           bool        `json:"hit"`
	Sphere        int         `json:"sphere"`             // -1 on a miss
	Distance      *float64    `json:"distance,omitempty"` // Absent on a miss
	Point         *[3]float64 `json:"point,omitempty"`
	Normal        *[3]float64 `json:"normal,omitempty"`
	Color         string      `json:"color"`
	BlurFactor    float64     `json:"blurFactor"`
	BlurIntensity int         `json:"blurIntensity"`
	Focus         float64     `json:"focus"`
	DepthOfField  float64     `json:"depthOfField"`
}

func newInspectResponse(report renderer.PixelReport, focus renderer.FocusState) InspectResponse {
	response := InspectResponse{
		X:             report.X,
		Y:             report.Y,
		Hit:           report.Hit,
		Sphere:        report.Sphere,
		Color:         hexColor(report.Color),
		BlurFactor:    report.BlurFactor,
		BlurIntensity: report.BlurIntensity,
		Focus:         focus.FocusDistance,
		DepthOfField:  focus.DepthOfField,
	}
	if report.Hit {
		distance := report.Distance
		point := vecArray(report.Point)
		normal := vecArray(report.Normal)
		response.Distance = &distance
		response.Point = &point
		response.Normal = &normal
	}
	return response
}

// handleInspect reports what a single pixel sees and how much it blurs
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	width, err := parseIntParam(values, "width", 800, minDimension, maxDimension)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid parameters: "+err.Error())
		return
	}
	height, err := parseIntParam(values, "height", 600, minDimension, maxDimension)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid parameters: "+err.Error())
		return
	}
	focus, err := s.parseFocusParams(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid parameters: "+err.Error())
		return
	}

	// Pixel coordinates are required
	if values.Get("x") == "" || values.Get("y") == "" {
		writeError(w, http.StatusBadRequest, "x and y are required")
		return
	}
	x, err := parseIntParam(values, "x", 0, 0, width-1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate: "+err.Error())
		return
	}
	y, err := parseIntParam(values, "y", 0, 0, height-1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate: "+err.Error())
		return
	}

	rt, err := s.checkoutRenderer(r.Context(), focus)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid parameters: "+err.Error())
		return
	}
	report, err := rt.Inspect(x, y, width, height)
	s.renderers.release(rt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, newInspectResponse(report, focus))
}
