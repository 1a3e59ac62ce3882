package renderer

import (
	"image"

	"github.com/df07/go-dof-raytracer/pkg/scene"
)

// TraceFrame runs the trace pass for the whole viewport on the calling
// goroutine
func TraceFrame(s *scene.Scene, width, height int) *SampleGrid {
	grid := NewSampleGrid(width, height)
	traceBounds(s, grid, image.Rect(0, 0, grid.Width, grid.Height))
	return grid
}

// tracePixel shades the primary ray through (x, y)
func tracePixel(s *scene.Scene, x, y, width, height int) PixelSample {
	ray := s.Camera.GetRay(x, y, width, height)

	hit, isHit := s.Hit(ray)
	if !isHit {
		return MissSample()
	}

	sphere := s.Spheres[hit.Sphere]
	color := s.Shader.Shade(hit.Point, hit.Normal, ray.Direction.Negate(), sphere.Color, s.Light)
	return HitSample(hit.Point.Subtract(ray.Origin).Length(), color)
}

// traceBounds fills the grid for pixels within bounds and returns the number
// of hits. Each pixel owns its slot, so disjoint bounds can be traced
// concurrently.
func traceBounds(s *scene.Scene, grid *SampleGrid, bounds image.Rectangle) int {
	hits := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sample := tracePixel(s, x, y, grid.Width, grid.Height)
			if _, ok := sample.Hit(); ok {
				hits++
			}
			grid.Set(x, y, sample)
		}
	}
	return hits
}
