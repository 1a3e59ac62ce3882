package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// BlurConfig controls the depth of field blur pass
type BlurConfig struct {
	MaxBlurIntensity      int // Window half-width for fully defocused lit pixels
	MaxBlackBlurIntensity int // Window half-width for fully defocused black pixels
}

// DefaultBlurConfig returns sensible default values
func DefaultBlurConfig() BlurConfig {
	return BlurConfig{
		MaxBlurIntensity:      6,
		MaxBlackBlurIntensity: 3, // Background blurs less so sphere edges don't smear into it
	}
}

// Validate checks that the intensities are non-negative
func (c BlurConfig) Validate() error {
	if c.MaxBlurIntensity < 0 || c.MaxBlackBlurIntensity < 0 {
		return fmt.Errorf("blur intensities must be non-negative, got %d and %d",
			c.MaxBlurIntensity, c.MaxBlackBlurIntensity)
	}
	return nil
}

// BlurFactor maps the distance from the focal plane to [0,1].
// Misses (distance +Inf) are always fully defocused.
func BlurFactor(distance, focusDistance, depthOfField float64) float64 {
	offset := math.Abs(distance - focusDistance)
	if !(depthOfField > 0) {
		if offset == 0 {
			return 0
		}
		return 1
	}
	return math.Max(0, math.Min(1, offset/depthOfField))
}

// BlurIntensity returns the blur window half-width for a sample
func BlurIntensity(sample PixelSample, focus FocusState, config BlurConfig) int {
	factor := BlurFactor(sample.Distance(), focus.FocusDistance, focus.DepthOfField)

	maxIntensity := config.MaxBlurIntensity
	if sample.Color().IsBlack() {
		maxIntensity = config.MaxBlackBlurIntensity
	}
	return int(math.Round(float64(maxIntensity) * factor))
}

// BlurFrame runs the blur pass over a finished sample grid on the calling
// goroutine
func BlurFrame(grid *SampleGrid, focus FocusState, config BlurConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	blurBounds(grid, img, img.Bounds(), focus, config)
	return img
}

// blurBounds writes blurred pixels for bounds into img. It only reads grid,
// so tiles can be blurred concurrently once the trace pass is complete.
func blurBounds(grid *SampleGrid, img *image.RGBA, bounds image.Rectangle, focus FocusState, config BlurConfig) {
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			radius := BlurIntensity(grid.At(x, y), focus, config)
			img.SetRGBA(x, y, averageWindow(grid, x, y, radius).average())
		}
	}
}

// averageWindow averages the square window of half-width radius around
// (x, y), clipped to the grid
func averageWindow(grid *SampleGrid, x, y, radius int) rgbSum {
	x0, x1 := max(0, x-radius), min(grid.Width-1, x+radius)
	y0, y1 := max(0, y-radius), min(grid.Height-1, y+radius)

	var sum rgbSum
	for wy := y0; wy <= y1; wy++ {
		row := grid.Samples[wy*grid.Width : (wy+1)*grid.Width]
		for wx := x0; wx <= x1; wx++ {
			c := row[wx].Color()
			sum.r += int(c.R)
			sum.g += int(c.G)
			sum.b += int(c.B)
			sum.n++
		}
	}
	return sum
}

type rgbSum struct {
	r, g, b, n int
}

// average returns the rounded, clamped average color
func (s rgbSum) average() color.RGBA {
	if s.n == 0 {
		return color.RGBA{A: 255}
	}
	n := float64(s.n)
	return color.RGBA{
		R: averageChannel(float64(s.r) / n),
		G: averageChannel(float64(s.g) / n),
		B: averageChannel(float64(s.b) / n),
		A: 255,
	}
}

func averageChannel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
