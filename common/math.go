package common

import "math"

// Gravity is the downward acceleration applied to airborne projectiles, in
// world units per second squared.
const Gravity = 9.81

// QueryLayer is the collision category reserved for spatial queries. Arena
// layers must not use it.
const QueryLayer uint32 = 1 << 31

// Vec3 is a world-space point or direction. Y is up.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

var (
	Up      = Vec3{Y: 1}
	Forward = Vec3{Z: 1}
)

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector of v, or the zero vector when v has no
// length.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Distance is the full 3D distance between two points.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Len()
}

// PlanarDistance ignores elevation.
func PlanarDistance(a, b Vec3) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}

// YawTowards returns the heading (radians around Y, 0 = +Z) that faces from
// `from` to `to`. ok is false when the two points share the same X/Z.
func YawTowards(from, to Vec3) (yaw float64, ok bool) {
	dx := to.X - from.X
	dz := to.Z - from.Z
	if math.Abs(dx) < 1e-9 && math.Abs(dz) < 1e-9 {
		return 0, false
	}
	return math.Atan2(dx, dz), true
}

// YawForward is the horizontal unit direction for a heading.
func YawForward(yaw float64) Vec3 {
	return Vec3{X: math.Sin(yaw), Z: math.Cos(yaw)}
}
