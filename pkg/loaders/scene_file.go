package loaders

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-dof-raytracer/pkg/core"
	"github.com/df07/go-dof-raytracer/pkg/geometry"
	"github.com/df07/go-dof-raytracer/pkg/material"
	"github.com/df07/go-dof-raytracer/pkg/scene"
)

// Scene files hold one statement per line. Blank lines and lines starting
// with # are ignored.
//
//	sphere <cx> <cy> <cz> <radius> <r> <g> <b>
//	light  <x> <y> <z> [<r> <g> <b>]
//	camera <focal> [<x> <y> <z>]
//
// Lines that fail to parse are logged and skipped so a half-edited file still
// renders.

// ParseScene parses scene statements from an io.Reader. Spheres keep file
// order. Missing light or camera statements fall back to the defaults.
func ParseScene(reader io.Reader, logger core.Logger) (*scene.Scene, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	s := scene.NewDefaultScene()
	s.Spheres = nil

	scanner := bufio.NewScanner(reader)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := parseStatement(s, strings.Fields(line)); err != nil {
			logger.Printf("Invalid line %d in scene file: %q: %v\n", lineNumber, line, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	return s, nil
}

// LoadScene loads and parses a scene file
func LoadScene(filename string, logger core.Logger) (*scene.Scene, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := ParseScene(file, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if logger != nil {
		logger.Printf("Loaded %d spheres from %s\n", len(s.Spheres), filename)
	}
	return s, nil
}

func parseStatement(s *scene.Scene, fields []string) error {
	switch strings.ToLower(fields[0]) {
	case "sphere":
		values, err := parseFloats(fields[1:], 7, 7)
		if err != nil {
			return err
		}
		color, err := parseColor(values[4:7])
		if err != nil {
			return err
		}
		sphere := geometry.NewSphere(core.NewVec3(values[0], values[1], values[2]), values[3], color)
		if err := sphere.Validate(); err != nil {
			return err
		}
		s.Spheres = append(s.Spheres, sphere)

	case "light":
		values, err := parseFloats(fields[1:], 3, 6)
		if err != nil {
			return err
		}
		light := material.PointLight{Position: core.NewVec3(values[0], values[1], values[2]), Color: core.White}
		if len(values) == 6 {
			if light.Color, err = parseColor(values[3:6]); err != nil {
				return err
			}
		} else if len(values) != 3 {
			return fmt.Errorf("light takes 3 or 6 values, got %d", len(values))
		}
		if !light.Position.IsFinite() {
			return fmt.Errorf("light position is not finite")
		}
		s.Light = light

	case "camera":
		values, err := parseFloats(fields[1:], 1, 4)
		if err != nil {
			return err
		}
		camera := s.Camera
		camera.FocalLength = values[0]
		if len(values) == 4 {
			camera.Position = core.NewVec3(values[1], values[2], values[3])
		} else if len(values) != 1 {
			return fmt.Errorf("camera takes 1 or 4 values, got %d", len(values))
		}
		if !(camera.FocalLength > 0) || math.IsInf(camera.FocalLength, 0) || !camera.Position.IsFinite() {
			return fmt.Errorf("camera needs a positive focal length and finite position")
		}
		s.Camera = camera

	default:
		return fmt.Errorf("unknown statement %q", fields[0])
	}
	return nil
}

// parseFloats parses between minCount and maxCount float fields
func parseFloats(fields []string, minCount, maxCount int) ([]float64, error) {
	if len(fields) < minCount || len(fields) > maxCount {
		if minCount == maxCount {
			return nil, fmt.Errorf("expected %d values, got %d", minCount, len(fields))
		}
		return nil, fmt.Errorf("expected %d to %d values, got %d", minCount, maxCount, len(fields))
	}

	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", field)
		}
		values[i] = v
	}
	return values, nil
}

// parseColor converts three 0-255 values to a color
func parseColor(values []float64) (core.RGB, error) {
	for _, v := range values {
		if v < 0 || v > 255 || v != float64(int(v)) {
			return core.RGB{}, fmt.Errorf("color channels must be integers in [0,255], got %v", v)
		}
	}
	return core.NewRGB(int(values[0]), int(values[1]), int(values[2])), nil
}

func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	if len(filename) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	return nil
}
