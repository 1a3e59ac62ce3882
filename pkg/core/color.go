package core

import "image/color"

// RGB is an 8-bit per channel color with no alpha
type RGB struct {
	R, G, B uint8
}

// Black is the color of pixels whose ray hit nothing
var Black = RGB{}

// White is the default light color
var White = RGB{R: 255, G: 255, B: 255}

// NewRGB creates a color from channel values, clamping each to [0,255]
func NewRGB(r, g, b int) RGB {
	return RGB{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

// IsBlack reports whether all channels are zero
func (c RGB) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// RGBA converts to an opaque color.RGBA
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func clampChannel(v int) uint8 {
	return uint8(max(0, min(255, v)))
}
