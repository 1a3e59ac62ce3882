package renderer

import (
	"fmt"
	"math"
)

// FocusDirection is a discrete focus adjustment from the host
type FocusDirection int

const (
	FocusUp   FocusDirection = iota // Move the focal plane away from the camera
	FocusDown                       // Move the focal plane toward the camera
)

func (d FocusDirection) String() string {
	switch d {
	case FocusUp:
		return "up"
	case FocusDown:
		return "down"
	default:
		return fmt.Sprintf("FocusDirection(%d)", int(d))
	}
}

// FocusState holds the depth of field parameters that persist across frames
type FocusState struct {
	FocusDistance float64 // Distance from the camera that stays sharp, always >= 0
	DepthOfField  float64 // Distance spread over which blur ramps up to its maximum
	FocusStep     float64 // Amount one key press moves the focal plane
}

// DefaultFocusState returns sensible default values
func DefaultFocusState() FocusState {
	return FocusState{
		FocusDistance: 8.0,
		DepthOfField:  2.0,
		FocusStep:     0.1,
	}
}

// Adjust moves the focus distance one step in the given direction and
// returns the new value
func (f *FocusState) Adjust(direction FocusDirection) float64 {
	switch direction {
	case FocusUp:
		f.SetFocusDistance(f.FocusDistance + f.FocusStep)
	case FocusDown:
		f.SetFocusDistance(f.FocusDistance - f.FocusStep)
	}
	return f.FocusDistance
}

// SetFocusDistance stores a clamped focus distance
func (f *FocusState) SetFocusDistance(distance float64) {
	f.FocusDistance = ClampFocusDistance(distance)
}

// ClampFocusDistance maps any float to a finite, non-negative focus distance.
// NaN and negative values become 0; +Inf becomes the largest float.
func ClampFocusDistance(distance float64) float64 {
	switch {
	case math.IsNaN(distance), distance < 0:
		return 0
	case math.IsInf(distance, 1):
		return math.MaxFloat64
	default:
		return distance
	}
}

// Validate checks the focus parameters
func (f FocusState) Validate() error {
	if math.IsNaN(f.FocusDistance) || math.IsInf(f.FocusDistance, 0) || f.FocusDistance < 0 {
		return fmt.Errorf("focus distance must be finite and non-negative, got %v", f.FocusDistance)
	}
	if !(f.DepthOfField > 0) || math.IsInf(f.DepthOfField, 0) {
		return fmt.Errorf("depth of field must be positive and finite, got %v", f.DepthOfField)
	}
	if math.IsNaN(f.FocusStep) || math.IsInf(f.FocusStep, 0) || f.FocusStep < 0 {
		return fmt.Errorf("focus step must be finite and non-negative, got %v", f.FocusStep)
	}
	return nil
}
