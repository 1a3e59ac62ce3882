package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-dof-raytracer/pkg/core"
)

func TestPixelSample_ZeroValueIsMiss(t *testing.T) {
	var s PixelSample

	if _, ok := s.Hit(); ok {
		t.Error("Expected zero value to be a miss")
	}
	if !math.IsInf(s.Distance(), 1) {
		t.Errorf("Expected +Inf distance, got %f", s.Distance())
	}
	if !s.Color().IsBlack() {
		t.Errorf("Expected black color, got %v", s.Color())
	}
	if s != MissSample() {
		t.Error("Expected MissSample to equal the zero value")
	}
}

func TestPixelSample_Hit(t *testing.T) {
	color := core.RGB{R: 10, G: 20, B: 30}
	s := HitSample(15, color)

	distance, ok := s.Hit()
	if !ok || distance != 15 {
		t.Errorf("Expected hit at 15, got %f (hit=%t)", distance, ok)
	}
	if s.Color() != color {
		t.Errorf("Expected %v, got %v", color, s.Color())
	}
}

func TestSampleGrid(t *testing.T) {
	grid := NewSampleGrid(3, 2)
	if len(grid.Samples) != 6 {
		t.Fatalf("Expected 6 samples, got %d", len(grid.Samples))
	}

	grid.Set(2, 1, HitSample(4, core.White))
	if d, ok := grid.At(2, 1).Hit(); !ok || d != 4 {
		t.Errorf("Expected stored hit at (2,1), got %v", grid.At(2, 1))
	}
	if _, ok := grid.At(0, 0).Hit(); ok {
		t.Error("Expected untouched samples to be misses")
	}

	if !grid.Fits(3, 2) || grid.Fits(2, 3) {
		t.Error("Fits should match only the allocated size")
	}
	var nilGrid *SampleGrid
	if nilGrid.Fits(0, 0) {
		t.Error("A nil grid should never fit")
	}
}
