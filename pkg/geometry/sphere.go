package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-dof-raytracer/pkg/core"
)

// Sphere represents a solid-colored sphere
type Sphere struct {
	Center core.Vec3
	Radius float64
	Color  core.RGB
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, color core.RGB) Sphere {
	return Sphere{
		Center: center,
		Radius: radius,
		Color:  color,
	}
}

// Intersect solves the ray-sphere quadratic and returns the smaller root.
// ok is false only when the discriminant is negative. The root may be zero or
// negative (sphere behind the origin, or origin inside the sphere); callers
// treat those as misses.
func (s Sphere) Intersect(ray core.Ray) (t float64, ok bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, false
	}

	return (-b - math.Sqrt(discriminant)) / (2.0 * a), true
}

// Normal returns the outward unit normal at a point on the surface
func (s Sphere) Normal(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Normalize()
}

// Validate checks that the sphere has a finite center and positive radius
func (s Sphere) Validate() error {
	if !s.Center.IsFinite() {
		return fmt.Errorf("sphere center %v is not finite", s.Center)
	}
	if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
		return fmt.Errorf("sphere radius must be positive and finite, got %v", s.Radius)
	}
	return nil
}
