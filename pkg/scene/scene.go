package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-dof-raytracer/pkg/core"
	"github.com/df07/go-dof-raytracer/pkg/geometry"
	"github.com/df07/go-dof-raytracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera  Camera
	Spheres []geometry.Sphere   // Evaluated in order; earlier spheres win exact ties
	Light   material.PointLight // Single point light
	Shader  material.Phong
}

// Hit describes the nearest intersection of a ray with the scene
type Hit struct {
	T      float64
	Point  core.Vec3
	Normal core.Vec3
	Sphere int // Index into Spheres
}

// Hit tests the ray against every sphere and returns the nearest hit in front
// of the ray origin. Non-positive roots are treated as misses.
func (s *Scene) Hit(ray core.Ray) (Hit, bool) {
	closest := math.Inf(1)
	index := -1

	for i, sphere := range s.Spheres {
		t, ok := sphere.Intersect(ray)
		if ok && t > 0 && t < closest {
			closest = t
			index = i
		}
	}

	if index < 0 {
		return Hit{}, false
	}

	point := ray.At(closest)
	return Hit{
		T:      closest,
		Point:  point,
		Normal: s.Spheres[index].Normal(point),
		Sphere: index,
	}, true
}

// Validate checks spheres and camera for values that would break rendering
func (s *Scene) Validate() error {
	if !s.Camera.Position.IsFinite() {
		return fmt.Errorf("camera position %v is not finite", s.Camera.Position)
	}
	if !(s.Camera.FocalLength > 0) || math.IsInf(s.Camera.FocalLength, 0) {
		return fmt.Errorf("camera focal length must be positive and finite, got %v", s.Camera.FocalLength)
	}
	if !s.Light.Position.IsFinite() {
		return fmt.Errorf("light position %v is not finite", s.Light.Position)
	}
	for i, sphere := range s.Spheres {
		if err := sphere.Validate(); err != nil {
			return fmt.Errorf("sphere %d: %w", i, err)
		}
	}
	return nil
}
