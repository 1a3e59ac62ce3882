package renderer

import (
	"fmt"

	"github.com/df07/go-dof-raytracer/pkg/core"
)

// PixelReport describes what a single pixel sees and how much it blurs
type PixelReport struct {
	X, Y          int
	Hit           bool
	Sphere        int     // Index of the sphere hit, -1 on a miss
	Distance      float64 // +Inf on a miss
	Point         core.Vec3
	Normal        core.Vec3
	Color         core.RGB // Shaded color before blur
	BlurFactor    float64
	BlurIntensity int
}

// Inspect traces the single pixel (x, y) of a width×height viewport with
// the current scene and focus
func (r *Renderer) Inspect(x, y, width, height int) (PixelReport, error) {
	if x < 0 || y < 0 || x >= width || y >= height {
		return PixelReport{}, fmt.Errorf("pixel (%d,%d) outside %dx%d viewport", x, y, width, height)
	}

	r.mu.Lock()
	s := r.scene
	focus := r.focus
	blur := r.config.Blur
	r.mu.Unlock()

	report := PixelReport{X: x, Y: y, Sphere: -1}

	sample := tracePixel(s, x, y, width, height)
	report.Distance = sample.Distance()
	report.Color = sample.Color()
	report.BlurFactor = BlurFactor(sample.Distance(), focus.FocusDistance, focus.DepthOfField)
	report.BlurIntensity = BlurIntensity(sample, focus, blur)

	if hit, ok := s.Hit(s.Camera.GetRay(x, y, width, height)); ok {
		report.Hit = true
		report.Sphere = hit.Sphere
		report.Point = hit.Point
		report.Normal = hit.Normal
	}

	return report, nil
}
