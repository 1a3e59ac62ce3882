package scene

import "github.com/df07/go-dof-raytracer/pkg/core"

// DefaultFocalLength sets the field of view: the distance, in pixels, from
// the eye to the image plane.
const DefaultFocalLength = 800.0

// Camera is a pinhole camera looking down +z
type Camera struct {
	Position    core.Vec3
	FocalLength float64
}

// NewCamera creates a camera at the world origin with the default focal length
func NewCamera() Camera {
	return Camera{
		Position:    core.NewVec3(0, 0, 0),
		FocalLength: DefaultFocalLength,
	}
}

// GetRay returns the primary ray through pixel (x, y) of a width×height
// viewport. Image y grows downward and maps to world +y unchanged.
func (c Camera) GetRay(x, y, width, height int) core.Ray {
	direction := core.NewVec3(
		float64(x)-float64(width)/2.0,
		float64(y)-float64(height)/2.0,
		c.FocalLength,
	).Normalize()
	return core.NewRay(c.Position, direction)
}
