package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-dof-raytracer/pkg/animation"
	"github.com/df07/go-dof-raytracer/pkg/core"
	"github.com/df07/go-dof-raytracer/pkg/export"
	"github.com/df07/go-dof-raytracer/pkg/loaders"
	"github.com/df07/go-dof-raytracer/pkg/overlay"
	"github.com/df07/go-dof-raytracer/pkg/renderer"
	"github.com/df07/go-dof-raytracer/pkg/scene"
)

// Options holds the parsed command line
type Options struct {
	Width        int
	Height       int
	Focus        float64
	DepthOfField float64
	Step         float64
	SceneFile    string
	Workers      int
	TileSize     int
	Scale        int
	Filter       string
	HUD          bool
	SweepTo      float64
	SweepFrames  int
	SweepEase    string
	SweepTime    float64
	Out          string
}

func main() {
	opts, help := parseFlags(flag.CommandLine, os.Args[1:])
	if help {
		printHelp()
		return
	}

	fmt.Println("Starting depth of field raytracer...")

	logger := renderer.NewDefaultLogger()
	if err := run(context.Background(), opts, logger); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Options, bool) {
	defaults := renderer.DefaultFocusState()
	var opts Options
	fs.IntVar(&opts.Width, "width", 800, "Image width in pixels")
	fs.IntVar(&opts.Height, "height", 600, "Image height in pixels")
	fs.Float64Var(&opts.Focus, "focus", defaults.FocusDistance, "Focus distance")
	fs.Float64Var(&opts.DepthOfField, "dof", defaults.DepthOfField, "Depth of field spread")
	fs.Float64Var(&opts.Step, "step", defaults.FocusStep, "Focus step per key press")
	fs.StringVar(&opts.SceneFile, "scene-file", "", "Scene description file (default: built-in three sphere scene)")
	fs.IntVar(&opts.Workers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	fs.IntVar(&opts.TileSize, "tile", 64, "Tile size in pixels")
	fs.IntVar(&opts.Scale, "scale", 1, "Integer upscale factor for the saved image")
	fs.StringVar(&opts.Filter, "filter", "nearest", "Upscale filter: 'nearest' or 'catmullrom'")
	fs.BoolVar(&opts.HUD, "hud", false, "Draw focus and timing text on the image")
	fs.Float64Var(&opts.SweepTo, "sweep-to", -1, "Render a focus sweep ending at this distance (negative = single frame)")
	fs.IntVar(&opts.SweepFrames, "sweep-frames", 30, "Number of frames in a focus sweep")
	fs.StringVar(&opts.SweepEase, "sweep-ease", "in-out-quad", "Easing for the focus sweep: "+strings.Join(animation.EaseNames(), ", "))
	fs.Float64Var(&opts.SweepTime, "sweep-seconds", 1, "Duration of the focus sweep in seconds")
	fs.StringVar(&opts.Out, "out", "", "Output file, or directory for a sweep (default: output/render_<timestamp>.png)")
	help := fs.Bool("help", false, "Show help information")
	fs.Parse(args)
	return opts, *help
}

func printHelp() {
	fmt.Println("Depth of Field Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Scene file statements:")
	fmt.Println("  sphere cx cy cz radius r g b")
	fmt.Println("  light x y z [r g b]")
	fmt.Println("  camera focal [x y z]")
	fmt.Println()
	fmt.Println("Output will be saved to output/render_<timestamp>.png unless -out is given")
}

// createScene loads the scene file if one is given, otherwise the built-in scene
func createScene(sceneFile string, logger core.Logger) (*scene.Scene, error) {
	if sceneFile == "" {
		return scene.NewDefaultScene(), nil
	}
	return loaders.LoadScene(sceneFile, logger)
}

func rendererConfig(opts Options) renderer.RendererConfig {
	config := renderer.DefaultRendererConfig()
	config.NumWorkers = opts.Workers
	config.TileSize = opts.TileSize
	config.Focus = renderer.FocusState{
		FocusDistance: opts.Focus,
		DepthOfField:  opts.DepthOfField,
		FocusStep:     opts.Step,
	}
	return config
}

func run(ctx context.Context, opts Options, logger core.Logger) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", opts.Width, opts.Height)
	}
	filter, err := export.ParseFilter(opts.Filter)
	if err != nil {
		return err
	}

	s, err := createScene(opts.SceneFile, logger)
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}

	r, err := renderer.NewRenderer(s, rendererConfig(opts), logger)
	if err != nil {
		return err
	}
	defer r.Close()

	var hud *overlay.HUD
	if opts.HUD {
		if hud, err = overlay.NewHUD(14); err != nil {
			return err
		}
		defer hud.Close()
	}

	finish := func(img *image.RGBA) *image.RGBA {
		if hud != nil {
			hud.Draw(img, overlay.FrameLines(r.Focus(), r.LastStats()))
		}
		return export.Scale(img, opts.Scale, filter)
	}

	if opts.SweepTo >= 0 {
		return renderSweep(ctx, r, opts, finish, logger)
	}

	startTime := time.Now()
	img, err := r.RenderFrameContext(ctx, opts.Width, opts.Height)
	if err != nil {
		return err
	}
	stats := r.LastStats()
	fmt.Printf("Render completed in %v (%d of %d pixels hit, %d tiles)\n",
		time.Since(startTime), stats.HitPixels, stats.TotalPixels, stats.Tiles)

	filename := opts.Out
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join("output", fmt.Sprintf("render_%s.png", timestamp))
	}
	if err := export.SavePNG(filename, finish(img)); err != nil {
		return err
	}

	fmt.Printf("Render saved as %s\n", filename)
	return nil
}

// renderSweep renders one frame per eased focus distance, then writes the
// whole sequence in parallel
func renderSweep(ctx context.Context, r *renderer.Renderer, opts Options, finish func(*image.RGBA) *image.RGBA, logger core.Logger) error {
	pull, err := animation.NewFocusPull(r.Focus().FocusDistance, opts.SweepTo, opts.SweepTime, opts.SweepEase)
	if err != nil {
		return err
	}

	distances := pull.Samples(opts.SweepFrames)
	if len(distances) == 0 {
		return fmt.Errorf("sweep needs at least one frame, got %d", opts.SweepFrames)
	}

	frames := make([]*image.RGBA, len(distances))
	for i, d := range distances {
		r.SetFocusDistance(d)
		img, err := r.RenderFrameContext(ctx, opts.Width, opts.Height)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		frames[i] = finish(img)
	}

	dir := opts.Out
	if dir == "" {
		dir = filepath.Join("output", "sweep_"+time.Now().Format("20060102_150405"))
	}
	paths, err := export.SaveSequence(ctx, dir, frames)
	if err != nil {
		return err
	}

	logger.Printf("Saved %d sweep frames to %s\n", len(paths), dir)
	return nil
}
