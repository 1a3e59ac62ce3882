// Package export writes rendered frames to disk.
package export

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Filter selects the resampling kernel used by Scale
type Filter int

const (
	Nearest Filter = iota
	CatmullRom
)

// ParseFilter maps a flag value to a Filter
func ParseFilter(name string) (Filter, error) {
	switch name {
	case "", "nearest":
		return Nearest, nil
	case "catmullrom":
		return CatmullRom, nil
	default:
		return Nearest, fmt.Errorf("unknown filter %q (want nearest or catmullrom)", name)
	}
}

func (f Filter) interpolator() xdraw.Interpolator {
	if f == CatmullRom {
		return xdraw.CatmullRom
	}
	return xdraw.NearestNeighbor
}

// Scale resizes img by an integer factor. A factor of 1 or less returns img.
func Scale(img *image.RGBA, factor int, filter Filter) *image.RGBA {
	if factor <= 1 || img == nil {
		return img
	}
	src := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, src.Dx()*factor, src.Dy()*factor))
	filter.interpolator().Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)
	return dst
}

// SavePNG encodes img to path, creating parent directories as needed
func SavePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return file.Close()
}

// FrameName returns the file name used for frame i of a sequence
func FrameName(i int) string {
	return fmt.Sprintf("frame_%04d.png", i)
}

// SaveSequence writes frames to dir as frame_0000.png, frame_0001.png, ...
// Encoding runs concurrently, bounded by GOMAXPROCS. The first error cancels
// the remaining writes.
func SaveSequence(ctx context.Context, dir string, frames []*image.RGBA) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sequence directory: %w", err)
	}

	paths := make([]string, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, frame := range frames {
		i, frame := i, frame
		paths[i] = filepath.Join(dir, FrameName(i))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if frame == nil {
				return fmt.Errorf("frame %d is nil", i)
			}
			return SavePNG(paths[i], frame)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
