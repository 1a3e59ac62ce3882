package main

import (
	"flag"
	"log"

	"github.com/df07/go-dof-raytracer/pkg/loaders"
	"github.com/df07/go-dof-raytracer/pkg/renderer"
	"github.com/df07/go-dof-raytracer/pkg/scene"
	"github.com/df07/go-dof-raytracer/viewer/control"
	"github.com/df07/go-dof-raytracer/viewer/host"
)

func main() {
	defaults := renderer.DefaultFocusState()
	viewerDefaults := control.DefaultConfig()

	width := flag.Int("width", 800, "Window width")
	height := flag.Int("height", 600, "Window height")
	focus := flag.Float64("focus", defaults.FocusDistance, "Initial focus distance")
	dof := flag.Float64("dof", defaults.DepthOfField, "Depth of field spread")
	step := flag.Float64("step", defaults.FocusStep, "Focus step per arrow key press")
	sceneFile := flag.String("scene-file", "", "Scene description file, reloaded with R")
	workers := flag.Int("workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	pullTo := flag.Float64("pull-to", viewerDefaults.PullTarget, "Focus distance the F key eases towards")
	pullSeconds := flag.Float64("pull-seconds", viewerDefaults.PullDuration, "Duration of the F key focus pull")
	pullEase := flag.String("pull-ease", viewerDefaults.PullEase, "Easing for the F key focus pull")
	flag.Parse()

	logger := renderer.NewDefaultLogger()

	s := scene.NewDefaultScene()
	if *sceneFile != "" {
		loaded, err := loaders.LoadScene(*sceneFile, logger)
		if err != nil {
			log.Fatalf("Failed to load scene: %v", err)
		}
		s = loaded
	}

	config := renderer.DefaultRendererConfig()
	config.NumWorkers = *workers
	config.Focus = renderer.FocusState{FocusDistance: *focus, DepthOfField: *dof, FocusStep: *step}

	r, err := renderer.NewRenderer(s, config, logger)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	viewerConfig := viewerDefaults
	viewerConfig.SceneFile = *sceneFile
	viewerConfig.PullTarget = *pullTo
	viewerConfig.PullDuration = *pullSeconds
	viewerConfig.PullEase = *pullEase

	window := host.WindowConfig{Title: "Depth of Field", Width: *width, Height: *height}
	if err := host.Run(r, window, viewerConfig, logger); err != nil {
		log.Fatalf("Viewer exited: %v", err)
	}
}
