package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/df07/go-dof-raytracer/pkg/core"
	"github.com/df07/go-dof-raytracer/pkg/scene"
)

var (
	// ErrFrameAbandoned is returned when the viewport or scene changed while
	// a frame was in flight. The partial frame is discarded.
	ErrFrameAbandoned = errors.New("frame abandoned: viewport or scene changed")

	// ErrRendererClosed is returned by RenderFrame after Close
	ErrRendererClosed = errors.New("renderer closed")
)

// RendererConfig contains configuration for the renderer
type RendererConfig struct {
	TileSize   int        // Size of each tile (64x64 recommended)
	NumWorkers int        // Number of parallel workers (0 = use CPU count)
	Focus      FocusState // Initial focus parameters
	Blur       BlurConfig // Blur pass limits
	LogFrames  bool       // Log a line per rendered frame
}

// DefaultRendererConfig returns sensible default values
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		TileSize:   64,
		NumWorkers: 0, // Auto-detect CPU count
		Focus:      DefaultFocusState(),
		Blur:       DefaultBlurConfig(),
	}
}

// Renderer renders a fixed sphere scene with a depth of field blur. The host
// calls RenderFrame once per refresh and forwards key and resize events
// through OnKey and OnResize. All methods are safe for concurrent use; frames
// are rendered one at a time.
type Renderer struct {
	renderMu sync.Mutex // Serializes frames so the sample grid can be reused

	mu         sync.Mutex // Guards everything below
	scene      *scene.Scene
	focus      FocusState
	config     RendererConfig
	grid       *SampleGrid // Cached sample grid for the current viewport
	viewportW  int
	viewportH  int
	generation uint64 // Bumped on resize and scene swap to abandon in-flight frames
	lastStats  FrameStats
	onRedraw   func()
	closed     bool

	pool   *WorkerPool
	logger core.Logger
}

// NewRenderer creates a renderer and starts its worker pool
func NewRenderer(s *scene.Scene, config RendererConfig, logger core.Logger) (*Renderer, error) {
	if s == nil {
		return nil, fmt.Errorf("scene is required")
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}

	config.Focus.SetFocusDistance(config.Focus.FocusDistance)
	if err := config.Focus.Validate(); err != nil {
		return nil, fmt.Errorf("invalid focus: %w", err)
	}
	if err := config.Blur.Validate(); err != nil {
		return nil, fmt.Errorf("invalid blur: %w", err)
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	pool := NewWorkerPool(config.NumWorkers)
	pool.Start()

	return &Renderer{
		scene:  s,
		focus:  config.Focus,
		config: config,
		pool:   pool,
		logger: logger,
	}, nil
}

// RenderFrame renders one frame of the given size
func (r *Renderer) RenderFrame(width, height int) (*image.RGBA, error) {
	return r.RenderFrameContext(context.Background(), width, height)
}

// RenderFrameContext renders one frame, checking ctx between tiles. A zero
// or negative dimension yields an empty image. If the viewport or scene
// changes mid-frame the frame is dropped with ErrFrameAbandoned.
func (r *Renderer) RenderFrameContext(ctx context.Context, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rectangle{}), nil
	}

	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRendererClosed
	}
	if !r.grid.Fits(width, height) {
		r.grid = NewSampleGrid(width, height)
	}
	job := &frameJob{
		ctx:   ctx,
		scene: r.scene,
		grid:  r.grid,
		image: image.NewRGBA(image.Rect(0, 0, width, height)),
		focus: r.focus,
		blur:  r.config.Blur,
	}
	generation := r.generation
	r.mu.Unlock()

	tiles := NewTileGrid(width, height, r.config.TileSize)

	// Trace must finish for every tile before any blur reads neighbors
	traceStart := time.Now()
	traced, err := r.pool.Run(newTasks(tiles, TracePass, job))
	if err != nil {
		return nil, err
	}
	traceTime := time.Since(traceStart)
	if r.abandoned(generation) {
		return nil, ErrFrameAbandoned
	}

	blurStart := time.Now()
	if _, err := r.pool.Run(newTasks(tiles, BlurPass, job)); err != nil {
		return nil, err
	}
	blurTime := time.Since(blurStart)
	if r.abandoned(generation) {
		return nil, ErrFrameAbandoned
	}

	stats := FrameStats{
		Width:            width,
		Height:           height,
		TotalPixels:      width * height,
		Tiles:            len(tiles),
		Workers:          r.pool.GetNumWorkers(),
		FocusDistance:    job.focus.FocusDistance,
		TraceTime:        traceTime,
		BlurTime:         blurTime,
		AverageLuminance: CalculateAverageLuminance(job.image),
	}
	for _, result := range traced {
		stats.HitPixels += result.Hits
	}

	r.mu.Lock()
	r.lastStats = stats
	r.mu.Unlock()

	if r.config.LogFrames {
		r.logger.Printf("Frame %dx%d rendered in %v (trace %v, blur %v, %d/%d hits, focus %.2f)\n",
			width, height, stats.FrameTime(), traceTime, blurTime, stats.HitPixels, stats.TotalPixels, stats.FocusDistance)
	}

	return job.image, nil
}

func newTasks(tiles []*Tile, pass Pass, job *frameJob) []TileTask {
	tasks := make([]TileTask, len(tiles))
	for i, tile := range tiles {
		tasks[i] = TileTask{Tile: tile, Pass: pass, TaskID: i, job: job}
	}
	return tasks
}

func (r *Renderer) abandoned(generation uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation != generation || r.closed
}

// OnKey moves the focal plane one step and requests a redraw. Returns the
// new focus distance.
func (r *Renderer) OnKey(direction FocusDirection) float64 {
	r.mu.Lock()
	distance := r.focus.Adjust(direction)
	redraw := r.onRedraw
	r.mu.Unlock()

	if redraw != nil {
		redraw()
	}
	return distance
}

// OnResize drops buffers sized for the old viewport and abandons any frame
// in flight. Repeating the current size is a no-op.
func (r *Renderer) OnResize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width == r.viewportW && height == r.viewportH {
		return
	}
	r.viewportW, r.viewportH = width, height
	r.grid = nil
	r.generation++
}

// SetScene replaces the scene. Any frame in flight is abandoned.
func (r *Renderer) SetScene(s *scene.Scene) error {
	if s == nil {
		return fmt.Errorf("scene is required")
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid scene: %w", err)
	}

	r.mu.Lock()
	r.scene = s
	r.generation++
	redraw := r.onRedraw
	r.mu.Unlock()

	if redraw != nil {
		redraw()
	}
	return nil
}

// Scene returns the current scene
func (r *Renderer) Scene() *scene.Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scene
}

// SetFocusDistance sets the focus distance, clamped to a finite value >= 0
func (r *Renderer) SetFocusDistance(distance float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.focus.SetFocusDistance(distance)
	return r.focus.FocusDistance
}

// SetFocus replaces all focus parameters. The focus distance is clamped as
// in SetFocusDistance; an invalid depth of field or step is rejected.
func (r *Renderer) SetFocus(focus FocusState) error {
	focus.SetFocusDistance(focus.FocusDistance)
	if err := focus.Validate(); err != nil {
		return fmt.Errorf("invalid focus: %w", err)
	}

	r.mu.Lock()
	r.focus = focus
	redraw := r.onRedraw
	r.mu.Unlock()

	if redraw != nil {
		redraw()
	}
	return nil
}

// Focus returns a copy of the current focus parameters
func (r *Renderer) Focus() FocusState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.focus
}

// SetRedrawFunc registers a callback fired when state changes require a new
// frame. The callback runs on the caller's goroutine without locks held.
func (r *Renderer) SetRedrawFunc(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRedraw = fn
}

// LastStats returns statistics for the most recent completed frame
func (r *Renderer) LastStats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastStats
}

// Close waits for any frame in flight and stops the worker pool
func (r *Renderer) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.renderMu.Lock()
	defer r.renderMu.Unlock()
	r.pool.Stop()
}
