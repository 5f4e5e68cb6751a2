package domain

import "math"

// Vec is a point or vector in floating point canvas coordinates.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point is a position rounded to integer canvas coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Polygon is an ordered list of vertices.
type Polygon []Vec

// Transform is a 2x3 affine matrix laid out as
//
//	| a b c |
//	| d e f |
//
// so that (x, y) maps to (a*x + b*y + c, d*x + e*y + f). A turtle pose only
// ever holds rotation and translation, so the linear part stays orthonormal.
type Transform [2][3]float64

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		{1, 0, 0},
		{0, 1, 0},
	}
}

// Trans moves the transform by (dx, dy) expressed in its own local frame.
func (t Transform) Trans(dx, dy float64) Transform {
	t[0][2] += t[0][0]*dx + t[0][1]*dy
	t[1][2] += t[1][0]*dx + t[1][1]*dy
	return t
}

// RotDeg rotates the local frame by deg degrees.
func (t Transform) RotDeg(deg float64) Transform {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	a, b := t[0][0], t[0][1]
	d, e := t[1][0], t[1][1]
	t[0][0] = a*cos + b*sin
	t[0][1] = b*cos - a*sin
	t[1][0] = d*cos + e*sin
	t[1][1] = e*cos - d*sin
	return t
}

// Pos returns the translation column.
func (t Transform) Pos() Vec {
	return Vec{X: t[0][2], Y: t[1][2]}
}

// Point returns the translation column rounded to the nearest integer.
func (t Transform) Point() Point {
	return Point{
		X: int(math.Round(t[0][2])),
		Y: int(math.Round(t[1][2])),
	}
}

// Det returns the determinant of the linear part.
func (t Transform) Det() float64 {
	return t[0][0]*t[1][1] - t[0][1]*t[1][0]
}
