package geom

import "math"

// Vec2 is a point or displacement on the horizontal world plane (x, z).
type Vec2 struct {
	X float64
	Z float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Z + o.Z} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Z - o.Z} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Z * s} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Z) }

func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// Norm returns the unit vector in v's direction, or the zero vector when v
// is too short to normalize safely.
func (v Vec2) Norm() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Z / l}
}

// Angle returns the facing angle of v in radians.
func (v Vec2) Angle() float64 { return math.Atan2(v.Z, v.X) }
