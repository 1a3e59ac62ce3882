// Package control maps viewer input to renderer operations. It has no
// window dependency so it can be driven from tests.
package control

import (
	"sync/atomic"

	"github.com/df07/go-dof-raytracer/pkg/animation"
	"github.com/df07/go-dof-raytracer/pkg/core"
	"github.com/df07/go-dof-raytracer/pkg/loaders"
	"github.com/df07/go-dof-raytracer/pkg/renderer"
)

// Action is a viewer command bound to a key
type Action int

const (
	FocusUp Action = iota
	FocusDown
	Reload
	FocusPull
	ToggleHUD
)

// Input reports which actions fired during the current tick
type Input interface {
	Pressed(action Action) bool
}

// Config holds viewer behaviour settings
type Config struct {
	SceneFile    string  // Reloaded on the Reload action; empty disables reload
	PullTarget   float64 // Focus distance the FocusPull action eases towards
	PullDuration float64 // Seconds
	PullEase     string  // Easing name from animation.EaseNames
	TPS          int     // Ticks per second used to advance the pull
	ShowHUD      bool
}

// DefaultConfig returns the default viewer settings
func DefaultConfig() Config {
	return Config{
		PullTarget:   14,
		PullDuration: 1.5,
		PullEase:     "in-out-cubic",
		TPS:          60,
		ShowHUD:      true,
	}
}

// Controller applies input to a renderer once per tick and tracks whether
// the window needs a new frame
type Controller struct {
	renderer *renderer.Renderer
	input    Input
	config   Config
	logger   core.Logger

	home    float64 // Focus distance to return to when a pull is repeated
	pull    *animation.FocusPull
	showHUD bool
	dirty   atomic.Bool
}

// New creates a controller and registers it as the renderer's redraw callback
func New(r *renderer.Renderer, input Input, config Config, logger core.Logger) *Controller {
	if config.TPS <= 0 {
		config.TPS = 60
	}
	c := &Controller{
		renderer: r,
		input:    input,
		config:   config,
		logger:   logger,
		home:     r.Focus().FocusDistance,
		showHUD:  config.ShowHUD,
	}
	c.dirty.Store(true)
	r.SetRedrawFunc(c.RequestRedraw)
	return c
}

// Update processes one tick of input and advances any running focus pull
func (c *Controller) Update() error {
	if c.input.Pressed(FocusUp) {
		c.pull = nil
		c.renderer.OnKey(renderer.FocusUp)
	}
	if c.input.Pressed(FocusDown) {
		c.pull = nil
		c.renderer.OnKey(renderer.FocusDown)
	}
	if c.input.Pressed(Reload) {
		c.reload()
	}
	if c.input.Pressed(FocusPull) {
		c.startPull()
	}
	if c.input.Pressed(ToggleHUD) {
		c.showHUD = !c.showHUD
		c.RequestRedraw()
	}

	if c.pull != nil {
		distance, done := c.pull.Update(1 / float64(c.config.TPS))
		c.renderer.SetFocusDistance(distance)
		c.RequestRedraw()
		if done {
			c.pull = nil
		}
	}
	return nil
}

// reload re-reads the scene file. A failed load keeps the current scene.
func (c *Controller) reload() {
	if c.config.SceneFile == "" {
		c.logger.Printf("No scene file to reload\n")
		return
	}
	s, err := loaders.LoadScene(c.config.SceneFile, c.logger)
	if err != nil {
		c.logger.Printf("Reload failed: %v\n", err)
		return
	}
	if err := c.renderer.SetScene(s); err != nil {
		c.logger.Printf("Reload failed: %v\n", err)
	}
}

// startPull eases towards the configured target, or back home when the focus
// already sits at the target
func (c *Controller) startPull() {
	from := c.renderer.Focus().FocusDistance
	to := c.config.PullTarget
	if from == to {
		to = c.home
	} else {
		c.home = from
	}

	pull, err := animation.NewFocusPull(from, to, c.config.PullDuration, c.config.PullEase)
	if err != nil {
		c.logger.Printf("Focus pull failed: %v\n", err)
		return
	}
	c.pull = pull
}

// Pulling reports whether a focus pull is running
func (c *Controller) Pulling() bool {
	return c.pull != nil
}

// ShowHUD reports whether the overlay should be drawn
func (c *Controller) ShowHUD() bool {
	return c.showHUD
}

// Resize forwards a viewport change to the renderer
func (c *Controller) Resize(width, height int) {
	before := c.renderer.LastStats()
	c.renderer.OnResize(width, height)
	if before.Width != width || before.Height != height {
		c.RequestRedraw()
	}
}

// RequestRedraw marks the current frame stale
func (c *Controller) RequestRedraw() {
	c.dirty.Store(true)
}

// NeedsRedraw reports and clears the stale flag
func (c *Controller) NeedsRedraw() bool {
	return c.dirty.Swap(false)
}
