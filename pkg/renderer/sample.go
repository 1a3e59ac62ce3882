package renderer

import (
	"math"

	"github.com/df07/go-dof-raytracer/pkg/core"
)

// PixelSample is the trace pass result for one pixel: either a hit with a
// distance and shaded color, or a miss. The zero value is a miss.
type PixelSample struct {
	hit      bool
	distance float64
	color    core.RGB
}

// HitSample records a ray that struck a sphere at the given distance
func HitSample(distance float64, color core.RGB) PixelSample {
	return PixelSample{hit: true, distance: distance, color: color}
}

// MissSample records a ray that struck nothing
func MissSample() PixelSample {
	return PixelSample{}
}

// Hit returns the hit distance, or ok=false on a miss
func (s PixelSample) Hit() (distance float64, ok bool) {
	return s.distance, s.hit
}

// Distance returns the hit distance, or +Inf on a miss
func (s PixelSample) Distance() float64 {
	if !s.hit {
		return math.Inf(1)
	}
	return s.distance
}

// Color returns the shaded color, black on a miss
func (s PixelSample) Color() core.RGB {
	if !s.hit {
		return core.Black
	}
	return s.color
}

// SampleGrid holds one PixelSample per pixel in row-major order
type SampleGrid struct {
	Width, Height int
	Samples       []PixelSample
}

// NewSampleGrid allocates a grid of misses
func NewSampleGrid(width, height int) *SampleGrid {
	width, height = max(width, 0), max(height, 0)
	return &SampleGrid{
		Width:   width,
		Height:  height,
		Samples: make([]PixelSample, width*height),
	}
}

// At returns the sample at (x, y)
func (g *SampleGrid) At(x, y int) PixelSample {
	return g.Samples[y*g.Width+x]
}

// Set stores the sample at (x, y)
func (g *SampleGrid) Set(x, y int, s PixelSample) {
	g.Samples[y*g.Width+x] = s
}

// Fits reports whether the grid matches the given viewport
func (g *SampleGrid) Fits(width, height int) bool {
	return g != nil && g.Width == width && g.Height == height
}
