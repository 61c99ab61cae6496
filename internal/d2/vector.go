package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// R2 vector manipulation routines.

func EqualWithin(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}
