package brep

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func near(t *testing.T, got, want r3.Vec) {
	t.Helper()
	if r3.Norm(r3.Sub(got, want)) > 1e-12 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTransformBasics(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	near(t, Identity().Apply(p), p)
	near(t, Translate(r3.Vec{X: 1, Y: -1}).Apply(p), r3.Vec{X: 2, Y: 1, Z: 3})
}

func TestRotation(t *testing.T) {
	rot := Rotation(r3.Vec{}, r3.Vec{Z: 1}, math.Pi/2)
	near(t, rot.Apply(r3.Vec{X: 1}), r3.Vec{Y: 1})
	if d := rot.Det(); math.Abs(d-1) > 1e-12 {
		t.Errorf("det = %g, want 1", d)
	}

	// the rotation center is a fixed point
	c := r3.Vec{X: 1, Y: 1}
	rotc := Rotation(c, r3.Vec{Z: 1}, math.Pi/2)
	near(t, rotc.Apply(c), c)
	near(t, rotc.Apply(r3.Vec{X: 2, Y: 1}), r3.Vec{X: 1, Y: 2})
}

func TestCombineAndInv(t *testing.T) {
	a := Translate(r3.Vec{X: 1})
	b := Rotation(r3.Vec{}, r3.Vec{Z: 1}, math.Pi/2)
	p := r3.Vec{X: 0.3, Y: 0.7, Z: -0.2}

	// Combine applies b first
	near(t, Combine(a, b).Apply(p), a.Apply(b.Apply(p)))

	c := Combine(a, b)
	near(t, c.Inv().Apply(c.Apply(p)), p)
	near(t, Combine(c.Inv(), c).Apply(p), p)
}

func TestApplyNormal(t *testing.T) {
	rot := Rotation(r3.Vec{X: 5}, r3.Vec{X: 1, Y: 1, Z: 1}, 0.8)
	n := r3.Unit(r3.Vec{X: 1, Y: -2, Z: 0.5})
	// for rigid maps the normal transforms like a direction
	near(t, rot.ApplyNormal(n), rot.ApplyVec(n))
	// and a translation leaves it alone
	near(t, Translate(r3.Vec{X: 3}).ApplyNormal(n), n)
}
