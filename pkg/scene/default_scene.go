package scene

import (
	"github.com/df07/go-dof-raytracer/pkg/core"
	"github.com/df07/go-dof-raytracer/pkg/geometry"
	"github.com/df07/go-dof-raytracer/pkg/material"
)

// NewDefaultScene creates the three-sphere depth of field scene: red and
// green spheres behind a larger blue one, lit from the upper right.
func NewDefaultScene() *Scene {
	return &Scene{
		Camera: NewCamera(),
		Spheres: []geometry.Sphere{
			geometry.NewSphere(core.NewVec3(-2, -0.5, 13), 1.2, core.RGB{R: 255}),
			geometry.NewSphere(core.NewVec3(2, 0.5, 13), 1.2, core.RGB{G: 255}),
			geometry.NewSphere(core.NewVec3(0, 0, 12), 1.5, core.RGB{B: 255}),
		},
		Light: material.PointLight{
			Position: core.NewVec3(5, 5, 0),
			Color:    core.White,
		},
		Shader: material.NewPhong(),
	}
}

// NewSingleSphereScene creates a scene with one sphere and the default light
func NewSingleSphereScene(center core.Vec3, radius float64, color core.RGB) *Scene {
	return &Scene{
		Camera:  NewCamera(),
		Spheres: []geometry.Sphere{geometry.NewSphere(center, radius, color)},
		Light: material.PointLight{
			Position: core.NewVec3(5, 5, 0),
			Color:    core.White,
		},
		Shader: material.NewPhong(),
	}
}
