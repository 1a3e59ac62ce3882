// Package animation eases the focal plane between two distances over time.
package animation

import (
	"fmt"
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-out-sine":  ease.InOutSine,
	"out-expo":     ease.OutExpo,
	"in-out-expo":  ease.InOutExpo,
	"out-bounce":   ease.OutBounce,
}

// EaseNames lists the accepted easing names in sorted order
func EaseNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FocusPull animates the focus distance from one value to another
type FocusPull struct {
	From, To float64
	Duration float64 // Seconds
	easing   ease.TweenFunc
	tween    *gween.Tween
	done     bool
}

// NewFocusPull creates a focus pull using a named easing function
func NewFocusPull(from, to, duration float64, easing string) (*FocusPull, error) {
	fn, ok := easings[easing]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q (want one of %v)", easing, EaseNames())
	}
	if !(duration > 0) {
		return nil, fmt.Errorf("duration must be positive, got %v", duration)
	}

	return &FocusPull{
		From:     from,
		To:       to,
		Duration: duration,
		easing:   fn,
		tween:    gween.New(float32(from), float32(to), float32(duration), fn),
	}, nil
}

// Update advances the pull by dt seconds and returns the current focus
// distance. Once done it keeps returning the target.
func (p *FocusPull) Update(dt float64) (float64, bool) {
	if p.done {
		return p.To, true
	}
	value, finished := p.tween.Update(float32(dt))
	if finished {
		p.done = true
		return p.To, true
	}
	return float64(value), false
}

// Done reports whether the pull has reached its target
func (p *FocusPull) Done() bool {
	return p.done
}

// Samples returns the focus distance for each of frames evenly spaced
// frames, first and last landing exactly on From and To. It does not touch
// the live animation state.
func (p *FocusPull) Samples(frames int) []float64 {
	switch {
	case frames <= 0:
		return nil
	case frames == 1:
		return []float64{p.To}
	}

	tween := gween.New(float32(p.From), float32(p.To), float32(p.Duration), p.easing)
	step := float32(p.Duration / float64(frames-1))
	samples := make([]float64, frames)
	samples[0] = p.From
	for i := 1; i < frames-1; i++ {
		value, _ := tween.Update(step)
		samples[i] = float64(value)
	}
	samples[frames-1] = p.To
	return samples
}
