// Package overlay draws a small text panel over rendered frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/df07/go-dof-raytracer/pkg/renderer"
)

// HUD renders lines of text in the top-left corner of an image
type HUD struct {
	face       font.Face
	padding    int
	lineHeight int
	ascent     int
	Foreground color.Color
	Background color.Color
}

// NewHUD creates a HUD using the embedded Go Regular font at the given
// point size (72 DPI, so points equal pixels)
func NewHUD(size float64) (*HUD, error) {
	if !(size > 0) {
		return nil, fmt.Errorf("font size must be positive, got %v", size)
	}

	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}

	metrics := face.Metrics()
	return &HUD{
		face:       face,
		padding:    4,
		lineHeight: metrics.Height.Ceil(),
		ascent:     metrics.Ascent.Ceil(),
		Foreground: color.White,
		Background: color.RGBA{A: 160},
	}, nil
}

// Close releases the font face
func (h *HUD) Close() error {
	return h.face.Close()
}

// Draw paints lines over a darkened panel in the image's top-left corner.
// Text that does not fit is clipped by the image bounds.
func (h *HUD) Draw(img draw.Image, lines []string) {
	if len(lines) == 0 {
		return
	}

	width := 0
	for _, line := range lines {
		width = max(width, font.MeasureString(h.face, line).Ceil())
	}

	origin := img.Bounds().Min
	panel := image.Rect(0, 0, width+2*h.padding, len(lines)*h.lineHeight+2*h.padding).
		Add(origin).
		Intersect(img.Bounds())
	draw.Draw(img, panel, image.NewUniform(h.Background), image.Point{}, draw.Over)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(h.Foreground),
		Face: h.face,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(origin.X+h.padding, origin.Y+h.padding+h.ascent+i*h.lineHeight)
		drawer.DrawString(line)
	}
}

// FrameLines formats the focus settings and frame timing for display
func FrameLines(focus renderer.FocusState, stats renderer.FrameStats) []string {
	return []string{
		fmt.Sprintf("focus %.2f  dof %.2f  step %.2f", focus.FocusDistance, focus.DepthOfField, focus.FocusStep),
		fmt.Sprintf("%dx%d  %v  (%d workers)", stats.Width, stats.Height, stats.FrameTime().Round(100_000), stats.Workers),
	}
}
