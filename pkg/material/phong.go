package material

import (
	"math"

	"github.com/df07/go-dof-raytracer/pkg/core"
)

// DefaultShininess is the specular exponent used by the scene renderer
const DefaultShininess = 32.0

// Phong is a local diffuse + specular shading model.
// There is no ambient term and no shadow test toward the light.
type Phong struct {
	Shininess float64
}

// NewPhong creates a Phong shader with the default specular exponent
func NewPhong() Phong {
	return Phong{Shininess: DefaultShininess}
}

// PointLight is a single light source at a position
type PointLight struct {
	Position core.Vec3
	Color    core.RGB
}

// Shade computes the color of a surface point lit by a point light.
// normal and viewDir must be unit vectors; viewDir points from the surface
// toward the viewer.
func (p Phong) Shade(point, normal, viewDir core.Vec3, base core.RGB, light PointLight) core.RGB {
	lightDir := light.Position.Subtract(point).Normalize()
	nDotL := normal.Dot(lightDir)

	diffuse := math.Max(nDotL, 0)

	reflectDir := normal.Multiply(2.0 * nDotL).Subtract(lightDir).Normalize()
	specular := math.Pow(math.Max(reflectDir.Dot(viewDir), 0), p.Shininess)

	return core.RGB{
		R: shadeChannel(base.R, diffuse, specular, light.Color.R),
		G: shadeChannel(base.G, diffuse, specular, light.Color.G),
		B: shadeChannel(base.B, diffuse, specular, light.Color.B),
	}
}

// shadeChannel truncates toward zero and caps at 255. Both terms are
// non-negative so no lower clamp is needed.
func shadeChannel(base uint8, diffuse, specular float64, light uint8) uint8 {
	v := int(float64(base)*diffuse + specular*float64(light))
	return uint8(min(v, 255))
}
