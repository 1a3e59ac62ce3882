// Package host runs the renderer inside an ebiten window.
package host

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/df07/go-dof-raytracer/pkg/core"
	"github.com/df07/go-dof-raytracer/pkg/overlay"
	"github.com/df07/go-dof-raytracer/pkg/renderer"
	"github.com/df07/go-dof-raytracer/viewer/control"
)

// Key repeat timing in ticks, for held arrow keys
const (
	repeatDelay    = 18
	repeatInterval = 3
)

var bindings = map[control.Action]ebiten.Key{
	control.FocusUp:   ebiten.KeyArrowUp,
	control.FocusDown: ebiten.KeyArrowDown,
	control.Reload:    ebiten.KeyR,
	control.FocusPull: ebiten.KeyF,
	control.ToggleHUD: ebiten.KeyH,
}

// keyboard reads actions from ebiten's key state. Focus keys repeat while
// held.
type keyboard struct{}

func (keyboard) Pressed(action control.Action) bool {
	key, ok := bindings[action]
	if !ok {
		return false
	}
	if action != control.FocusUp && action != control.FocusDown {
		return inpututil.IsKeyJustPressed(key)
	}
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0)
}

// WindowConfig holds window settings
type WindowConfig struct {
	Title  string
	Width  int
	Height int
}

// Run opens a window and renders frames until it is closed. It blocks.
func Run(r *renderer.Renderer, window WindowConfig, config control.Config, logger core.Logger) error {
	config.TPS = ebiten.TPS()
	g := &game{
		renderer: r,
		ctrl:     control.New(r, keyboard{}, config, logger),
		logger:   logger,
	}

	hud, err := overlay.NewHUD(14)
	if err != nil {
		return err
	}
	defer hud.Close()
	g.hud = hud

	ebiten.SetWindowTitle(window.Title)
	ebiten.SetWindowSize(window.Width, window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

type game struct {
	renderer *renderer.Renderer
	ctrl     *control.Controller
	hud      *overlay.HUD
	logger   core.Logger

	frame  *ebiten.Image
	width  int
	height int
}

func (g *game) Update() error {
	return g.ctrl.Update()
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.ctrl.NeedsRedraw() {
		g.redraw()
	}
	if g.frame != nil {
		screen.DrawImage(g.frame, nil)
	}
}

// redraw renders a new frame into the offscreen image. An abandoned frame is
// retried on the next tick.
func (g *game) redraw() {
	img, err := g.renderer.RenderFrame(g.width, g.height)
	if err != nil {
		if errors.Is(err, renderer.ErrFrameAbandoned) {
			g.ctrl.RequestRedraw()
			return
		}
		g.logger.Printf("Render failed: %v\n", err)
		return
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return
	}
	if g.ctrl.ShowHUD() {
		g.hud.Draw(img, overlay.FrameLines(g.renderer.Focus(), g.renderer.LastStats()))
	}

	if g.frame == nil || g.frame.Bounds().Dx() != w || g.frame.Bounds().Dy() != h {
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(w, h)
	}
	g.frame.WritePixels(img.Pix)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.ctrl.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
