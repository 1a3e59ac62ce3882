package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/df07/go-dof-raytracer/pkg/core"
	"github.com/df07/go-dof-raytracer/pkg/geometry"
	"github.com/df07/go-dof-raytracer/pkg/scene"
)

// bufferLogger collects log output for assertions
type bufferLogger struct {
	buf bytes.Buffer
}

func (l *bufferLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&l.buf, format, args...)
}

func newTestRenderer(t *testing.T, s *scene.Scene, config RendererConfig) *Renderer {
	t.Helper()
	r, err := NewRenderer(s, config, nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestRenderer_MatchesSequentialPasses(t *testing.T) {
	tests := []struct {
		name       string
		tileSize   int
		numWorkers int
	}{
		{"single worker single tile", 256, 1},
		{"many small tiles", 7, 4},
		{"auto workers", 16, 0},
	}

	s := scene.NewDefaultScene()
	s.Camera.FocalLength = 60 // Fit all three spheres in a small viewport
	width, height := 64, 48

	focus := DefaultFocusState()
	expected := BlurFrame(TraceFrame(s, width, height), focus, DefaultBlurConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultRendererConfig()
			config.TileSize = tt.tileSize
			config.NumWorkers = tt.numWorkers
			r := newTestRenderer(t, s, config)

			img, err := r.RenderFrame(width, height)
			if err != nil {
				t.Fatalf("RenderFrame: %v", err)
			}
			if !bytes.Equal(img.Pix, expected.Pix) {
				t.Error("Parallel frame differs from sequential trace + blur")
			}
		})
	}
}

func TestRenderer_ZeroSizedViewport(t *testing.T) {
	r := newTestRenderer(t, scene.NewDefaultScene(), DefaultRendererConfig())

	for _, size := range [][2]int{{0, 0}, {0, 10}, {10, 0}, {-5, 10}} {
		img, err := r.RenderFrame(size[0], size[1])
		if err != nil {
			t.Fatalf("Unexpected error for %v: %v", size, err)
		}
		if !img.Bounds().Empty() || len(img.Pix) != 0 {
			t.Errorf("Expected empty image for %v, got %v", size, img.Bounds())
		}
	}
}

func TestRenderer_Stats(t *testing.T) {
	s := scene.NewSingleSphereScene(core.NewVec3(0, 0, 20), 5, core.RGB{R: 200})
	s.Camera.FocalLength = 4
	config := DefaultRendererConfig()
	config.TileSize = 4
	r := newTestRenderer(t, s, config)

	if _, err := r.RenderFrame(10, 10); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	stats := r.LastStats()

	expectedHits := 0
	for _, sample := range TraceFrame(s, 10, 10).Samples {
		if _, ok := sample.Hit(); ok {
			expectedHits++
		}
	}
	if stats.HitPixels != expectedHits {
		t.Errorf("Expected %d hit pixels, got %d", expectedHits, stats.HitPixels)
	}
	if stats.TotalPixels != 100 || stats.Tiles != 9 {
		t.Errorf("Expected 100 pixels in 9 tiles, got %d in %d", stats.TotalPixels, stats.Tiles)
	}
	if stats.FocusDistance != DefaultFocusState().FocusDistance {
		t.Errorf("Expected focus %f in stats, got %f", DefaultFocusState().FocusDistance, stats.FocusDistance)
	}
}

func TestRenderer_OnKeyAdjustsFocusAndRequestsRedraw(t *testing.T) {
	config := DefaultRendererConfig()
	config.Focus = FocusState{FocusDistance: 10, DepthOfField: 2, FocusStep: 4}
	r := newTestRenderer(t, scene.NewDefaultScene(), config)

	redraws := 0
	r.SetRedrawFunc(func() { redraws++ })

	for i := 0; i < 3; i++ {
		r.OnKey(FocusDown)
	}
	if got := r.Focus().FocusDistance; got != 0 {
		t.Errorf("Expected focus clamped to 0, got %f", got)
	}
	if got := r.OnKey(FocusUp); got != 4 {
		t.Errorf("Expected focus 4 after one step up, got %f", got)
	}
	if redraws != 4 {
		t.Errorf("Expected 4 redraw requests, got %d", redraws)
	}
}

func TestRenderer_SetFocusDistanceClamps(t *testing.T) {
	r := newTestRenderer(t, scene.NewDefaultScene(), DefaultRendererConfig())

	if got := r.SetFocusDistance(-3); got != 0 {
		t.Errorf("Expected 0, got %f", got)
	}
	if got := r.SetFocusDistance(math.NaN()); got != 0 {
		t.Errorf("Expected 0 for NaN, got %f", got)
	}
	if got := r.SetFocusDistance(12.5); got != 12.5 {
		t.Errorf("Expected 12.5, got %f", got)
	}
}

func TestRenderer_SetFocus(t *testing.T) {
	r := newTestRenderer(t, scene.NewDefaultScene(), DefaultRendererConfig())
	redraws := 0
	r.SetRedrawFunc(func() { redraws++ })

	if err := r.SetFocus(FocusState{FocusDistance: -2, DepthOfField: 4, FocusStep: 0.5}); err != nil {
		t.Fatalf("SetFocus: %v", err)
	}
	want := FocusState{FocusDistance: 0, DepthOfField: 4, FocusStep: 0.5}
	if got := r.Focus(); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if redraws != 1 {
		t.Errorf("Expected 1 redraw, got %d", redraws)
	}

	if err := r.SetFocus(FocusState{FocusDistance: 5, DepthOfField: 0, FocusStep: 0.1}); err == nil {
		t.Error("Expected error for zero depth of field")
	}
	if got := r.Focus(); got != want {
		t.Errorf("Rejected focus should not replace the current one, got %+v", got)
	}
}

func TestRenderer_ResizeInvalidatesBuffers(t *testing.T) {
	r := newTestRenderer(t, scene.NewDefaultScene(), DefaultRendererConfig())

	if _, err := r.RenderFrame(20, 10); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if !r.grid.Fits(20, 10) {
		t.Fatal("Expected cached grid for 20x10")
	}

	r.mu.Lock()
	generation := r.generation
	r.mu.Unlock()

	r.OnResize(30, 15)
	if r.grid != nil {
		t.Error("Expected resize to drop the cached grid")
	}
	if !r.abandoned(generation) {
		t.Error("Expected an in-flight frame to be abandoned after resize")
	}

	// Repeating the same size must not abandon the next frame
	r.mu.Lock()
	generation = r.generation
	r.mu.Unlock()
	r.OnResize(30, 15)
	if r.abandoned(generation) {
		t.Error("Expected same-size resize to be a no-op")
	}

	img, err := r.RenderFrame(30, 15)
	if err != nil {
		t.Fatalf("RenderFrame after resize: %v", err)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 15 {
		t.Errorf("Expected 30x15 frame, got %v", img.Bounds())
	}
}

// pausingContext blocks the first tile task until the test has changed the
// renderer, so the change lands while the frame is in flight
type pausingContext struct {
	context.Context
	once    sync.Once
	started chan struct{}
	resume  chan struct{}
}

func newPausingContext() *pausingContext {
	return &pausingContext{
		Context: context.Background(),
		started: make(chan struct{}),
		resume:  make(chan struct{}),
	}
}

func (c *pausingContext) Err() error {
	c.once.Do(func() {
		close(c.started)
		<-c.resume
	})
	return c.Context.Err()
}

func TestRenderer_FrameAbandonedMidFrame(t *testing.T) {
	tests := []struct {
		name   string
		change func(r *Renderer) error
	}{
		{"resize", func(r *Renderer) error {
			r.OnResize(800, 600)
			return nil
		}},
		{"scene swap", func(r *Renderer) error {
			return r.SetScene(scene.NewDefaultScene())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultRendererConfig()
			config.NumWorkers = 4
			r := newTestRenderer(t, scene.NewDefaultScene(), config)
			r.OnResize(1600, 1200)

			ctx := newPausingContext()
			done := make(chan error, 1)
			go func() {
				_, err := r.RenderFrameContext(ctx, 1600, 1200)
				done <- err
			}()

			<-ctx.started
			if err := tt.change(r); err != nil {
				t.Fatalf("change: %v", err)
			}
			close(ctx.resume)

			if err := <-done; !errors.Is(err, ErrFrameAbandoned) {
				t.Fatalf("Expected ErrFrameAbandoned, got %v", err)
			}

			// The next frame renders normally
			img, err := r.RenderFrame(40, 30)
			if err != nil {
				t.Fatalf("RenderFrame after abandon: %v", err)
			}
			if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
				t.Errorf("Expected 40x30 frame, got %v", img.Bounds())
			}
		})
	}
}

func TestRenderer_SetScene(t *testing.T) {
	r := newTestRenderer(t, scene.NewDefaultScene(), DefaultRendererConfig())

	empty := scene.NewDefaultScene()
	empty.Spheres = nil
	if err := r.SetScene(empty); err != nil {
		t.Fatalf("SetScene: %v", err)
	}

	img, err := r.RenderFrame(8, 8)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
			t.Fatalf("Expected black frame for empty scene, got pixel %v", img.Pix[i:i+4])
		}
	}

	bad := scene.NewDefaultScene()
	bad.Spheres = []geometry.Sphere{geometry.NewSphere(core.NewVec3(0, 0, 5), -1, core.White)}
	if err := r.SetScene(bad); err == nil {
		t.Error("Expected error for invalid scene")
	}
	if r.Scene() != empty {
		t.Error("Invalid scene should not replace the current one")
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	r := newTestRenderer(t, scene.NewDefaultScene(), DefaultRendererConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.RenderFrameContext(ctx, 32, 32); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRenderer_Closed(t *testing.T) {
	r, err := NewRenderer(scene.NewDefaultScene(), DefaultRendererConfig(), nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	r.Close()
	r.Close()

	if _, err := r.RenderFrame(4, 4); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("Expected ErrRendererClosed, got %v", err)
	}
}

func TestNewRenderer_Validation(t *testing.T) {
	badFocus := DefaultRendererConfig()
	badFocus.Focus.DepthOfField = 0
	if _, err := NewRenderer(scene.NewDefaultScene(), badFocus, nil); err == nil {
		t.Error("Expected error for zero depth of field")
	}

	badBlur := DefaultRendererConfig()
	badBlur.Blur.MaxBlackBlurIntensity = -1
	if _, err := NewRenderer(scene.NewDefaultScene(), badBlur, nil); err == nil {
		t.Error("Expected error for negative blur intensity")
	}

	if _, err := NewRenderer(nil, DefaultRendererConfig(), nil); err == nil {
		t.Error("Expected error for nil scene")
	}

	// Negative initial focus is clamped rather than rejected
	clamped := DefaultRendererConfig()
	clamped.Focus.FocusDistance = -4
	r, err := NewRenderer(scene.NewDefaultScene(), clamped, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer r.Close()
	if r.Focus().FocusDistance != 0 {
		t.Errorf("Expected clamped focus 0, got %f", r.Focus().FocusDistance)
	}
}

func TestRenderer_LogFrames(t *testing.T) {
	logger := &bufferLogger{}
	config := DefaultRendererConfig()
	config.LogFrames = true
	r, err := NewRenderer(scene.NewDefaultScene(), config, logger)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	defer r.Close()

	if _, err := r.RenderFrame(16, 16); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if !strings.Contains(logger.buf.String(), "Frame 16x16 rendered") {
		t.Errorf("Expected frame log line, got %q", logger.buf.String())
	}
}
