package domain

import "math"

// Position is a point in the catalog frame, in light-years.
// The x axis points at the vernal equinox, z at the north celestial pole.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// NewPosition creates a new position
func NewPosition(x, y, z float64) Position {
	return Position{X: x, Y: y, Z: z}
}

// Sub returns p - o
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Dot returns the scalar product of p and o
func (p Position) Dot(o Position) float64 {
	return p.X*o.X + p.Y*o.Y + p.Z*o.Z
}

// Cross returns the vector product p × o
func (p Position) Cross(o Position) Position {
	return Position{
		X: p.Y*o.Z - p.Z*o.Y,
		Y: p.Z*o.X - p.X*o.Z,
		Z: p.X*o.Y - p.Y*o.X,
	}
}

// Norm returns the Euclidean length of p
func (p Position) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}

// DistanceTo returns the Euclidean distance between p and o
func (p Position) DistanceTo(o Position) float64 {
	return p.Sub(o).Norm()
}

// InBox reports whether p lies inside the axis-aligned box spanned by a and b,
// boundaries included.
func (p Position) InBox(a, b Position) bool {
	return within(p.X, a.X, b.X) && within(p.Y, a.Y, b.Y) && within(p.Z, a.Z, b.Z)
}

func within(v, a, b float64) bool {
	return math.Min(a, b) <= v && v <= math.Max(a, b)
}

// PerpDistance returns the distance from p to the infinite line through a and b.
// When a and b coincide the line degenerates to a point and the plain distance
// to a is returned.
func (p Position) PerpDistance(a, b Position) float64 {
	dir := b.Sub(a)
	length := dir.Norm()
	if length == 0 {
		return p.DistanceTo(a)
	}
	return p.Sub(a).Cross(p.Sub(b)).Norm() / length
}
