package brep

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is a rigid affine map x -> L*x + t in three dimensions,
// stored as the linear part L in row major order plus the offset t.
// The zero value is NOT the identity; use Identity.
type Transform struct {
	lin [9]float64
	off r3.Vec
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{lin: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// Translate returns the transform x -> x + v.
func Translate(v r3.Vec) Transform {
	t := Identity()
	t.off = v
	return t
}

// Rotation returns the transform rotating by angle (radians) about the
// axis direction through the point center, following the right hand rule.
func Rotation(center, axis r3.Vec, angle float64) Transform {
	rot := r3.NewRotation(angle, axis)
	var t Transform
	ex := rot.Rotate(r3.Vec{X: 1})
	ey := rot.Rotate(r3.Vec{Y: 1})
	ez := rot.Rotate(r3.Vec{Z: 1})
	t.lin = [9]float64{
		ex.X, ey.X, ez.X,
		ex.Y, ey.Y, ez.Y,
		ex.Z, ey.Z, ez.Z,
	}
	t.off = r3.Sub(center, t.ApplyVec(center))
	return t
}

// Apply maps the point p.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	return r3.Add(t.ApplyVec(p), t.off)
}

// ApplyVec maps the direction v by the linear part only.
func (t Transform) ApplyVec(v r3.Vec) r3.Vec {
	l := &t.lin
	return r3.Vec{
		X: l[0]*v.X + l[1]*v.Y + l[2]*v.Z,
		Y: l[3]*v.X + l[4]*v.Y + l[5]*v.Z,
		Z: l[6]*v.X + l[7]*v.Y + l[8]*v.Z,
	}
}

// Combine returns the composition a∘b, the transform applying b first
// and then a.
func Combine(a, b Transform) Transform {
	var c Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c.lin[3*i+j] = a.lin[3*i]*b.lin[j] +
				a.lin[3*i+1]*b.lin[3+j] +
				a.lin[3*i+2]*b.lin[6+j]
		}
	}
	c.off = a.Apply(b.off)
	return c
}

// Det returns the determinant of the linear part.
func (t Transform) Det() float64 {
	l := &t.lin
	return l[0]*(l[4]*l[8]-l[5]*l[7]) -
		l[1]*(l[3]*l[8]-l[5]*l[6]) +
		l[2]*(l[3]*l[7]-l[4]*l[6])
}

// Inv returns the inverse transform. It panics if the linear part is
// singular, which cannot happen for rigid transforms.
func (t Transform) Inv() Transform {
	det := t.Det()
	if math.Abs(det) < 1e-300 {
		panic("brep: inverting singular transform")
	}
	d := 1 / det
	l := &t.lin
	var m Transform
	m.lin = [9]float64{
		(l[4]*l[8] - l[5]*l[7]) * d, (l[2]*l[7] - l[1]*l[8]) * d, (l[1]*l[5] - l[2]*l[4]) * d,
		(l[5]*l[6] - l[3]*l[8]) * d, (l[0]*l[8] - l[2]*l[6]) * d, (l[2]*l[3] - l[0]*l[5]) * d,
		(l[3]*l[7] - l[4]*l[6]) * d, (l[1]*l[6] - l[0]*l[7]) * d, (l[0]*l[4] - l[1]*l[3]) * d,
	}
	m.off = r3.Scale(-1, m.ApplyVec(t.off))
	return m
}

// ApplyNormal maps the surface normal direction n, using the inverse
// transpose of the linear part. The result is not normalized.
func (t Transform) ApplyNormal(n r3.Vec) r3.Vec {
	inv := t.Inv()
	// transpose of inv applied to n
	l := &inv.lin
	return r3.Vec{
		X: l[0]*n.X + l[3]*n.Y + l[6]*n.Z,
		Y: l[1]*n.X + l[4]*n.Y + l[7]*n.Z,
		Z: l[2]*n.X + l[5]*n.Y + l[8]*n.Z,
	}
}
