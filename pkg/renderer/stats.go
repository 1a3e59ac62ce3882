package renderer

import (
	"image"
	"time"
)

// FrameStats contains statistics about one rendered frame
type FrameStats struct {
	Width, Height    int
	TotalPixels      int           // Width * Height
	HitPixels        int           // Pixels whose ray struck a sphere
	Tiles            int           // Tiles per pass
	Workers          int           // Worker goroutines used
	FocusDistance    float64       // Focus distance the frame was blurred with
	TraceTime        time.Duration // Wall time of the trace pass
	BlurTime         time.Duration // Wall time of the blur pass
	AverageLuminance float64       // Mean luminance of the output, 0..1
}

// FrameTime returns the combined pass time
func (fs FrameStats) FrameTime() time.Duration {
	return fs.TraceTime + fs.BlurTime
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image
// in [0,1]. An empty image has luminance 0.
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			total += 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
		}
	}
	return total / (255.0 * float64(pixels))
}
