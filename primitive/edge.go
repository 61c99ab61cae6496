package primitive

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
)

// LineEdge is a straight segment between two vertices.
type LineEdge struct {
	info   brep.ShapeInfo
	v0, v1 *Vertex
	// DomIn and DomOut are the adjacent face numbers for surface meshing,
	// or the 1D domain numbers for wire geometries. -1 means none.
	DomIn, DomOut int
}

var _ brep.Edge = (*LineEdge)(nil)

// NewLineEdge returns the segment from v0 to v1 with no adjacent domains.
func NewLineEdge(v0, v1 *Vertex) *LineEdge {
	return &LineEdge{v0: v0, v1: v1, DomIn: -1, DomOut: -1}
}

func (e *LineEdge) Info() *brep.ShapeInfo { return &e.info }
func (e *LineEdge) Kind() brep.Kind       { return brep.KindEdge }
func (e *LineEdge) Center() r3.Vec        { return e.GetPoint(0.5) }

func (e *LineEdge) GetPoint(t float64) r3.Vec {
	return r3.Add(e.v0.P, r3.Scale(t, r3.Sub(e.v1.P, e.v0.P)))
}

func (e *LineEdge) GetTangent(t float64) r3.Vec { return r3.Sub(e.v1.P, e.v0.P) }

// CalcStep overshoots the parameter range since a chord of a straight
// segment has no deviation.
func (e *LineEdge) CalcStep(t, relerr float64) float64 { return 2 }

func (e *LineEdge) Length() float64 { return r3.Norm(r3.Sub(e.v1.P, e.v0.P)) }

func (e *LineEdge) StartVertex() brep.Vertex { return e.v0 }
func (e *LineEdge) EndVertex() brep.Vertex   { return e.v1 }

func (e *LineEdge) IsDegenerated(tol float64) bool { return e.Length() < tol }

func (e *LineEdge) ProjectPoint(p r3.Vec) (r3.Vec, float64) {
	d := r3.Sub(e.v1.P, e.v0.P)
	den := r3.Dot(d, d)
	if den == 0 {
		return e.v0.P, 0
	}
	t := clamp01(r3.Dot(r3.Sub(p, e.v0.P), d) / den)
	return e.GetPoint(t), t
}

func (e *LineEdge) Domains() (in, out int) { return e.DomIn, e.DomOut }

// ArcEdge is a circular arc from v0 to v1 around a center, swept by a
// signed angle about an axis. The parameterization runs the angle
// linearly from 0 at v0 to sweep at v1.
type ArcEdge struct {
	info          brep.ShapeInfo
	v0, v1        *Vertex
	center        r3.Vec
	radius        float64
	sweep         float64
	u, w          r3.Vec // orthonormal in-plane frame, u towards v0
	DomIn, DomOut int
}

var _ brep.Edge = (*ArcEdge)(nil)

// NewArcEdge returns the arc from v0 to v1 around center, swept by the
// signed angle sweep about axis. v0 must lie off center and axis must be
// normal to the arc plane.
func NewArcEdge(v0, v1 *Vertex, center r3.Vec, axis r3.Vec, sweep float64) *ArcEdge {
	ru := r3.Sub(v0.P, center)
	radius := r3.Norm(ru)
	u := r3.Scale(1/radius, ru)
	w := r3.Cross(r3.Unit(axis), u)
	return &ArcEdge{
		v0: v0, v1: v1,
		center: center, radius: radius, sweep: sweep,
		u: u, w: w,
		DomIn: -1, DomOut: -1,
	}
}

func (e *ArcEdge) Info() *brep.ShapeInfo { return &e.info }
func (e *ArcEdge) Kind() brep.Kind       { return brep.KindEdge }
func (e *ArcEdge) Center() r3.Vec        { return e.GetPoint(0.5) }

func (e *ArcEdge) GetPoint(t float64) r3.Vec {
	phi := t * e.sweep
	dir := r3.Add(r3.Scale(math.Cos(phi), e.u), r3.Scale(math.Sin(phi), e.w))
	return r3.Add(e.center, r3.Scale(e.radius, dir))
}

func (e *ArcEdge) GetTangent(t float64) r3.Vec {
	phi := t * e.sweep
	dir := r3.Add(r3.Scale(-math.Sin(phi), e.u), r3.Scale(math.Cos(phi), e.w))
	return r3.Scale(e.radius*e.sweep, dir)
}

// CalcStep bounds the chord error of a circular arc: a parameter step dt
// spans the angle dt*sweep, whose chord sags by r*(1-cos(angle/2)). The
// small angle expansion gives angle = sqrt(8*relerr) for a relative sag
// of relerr.
func (e *ArcEdge) CalcStep(t, relerr float64) float64 {
	return math.Sqrt(8*relerr) / math.Abs(e.sweep)
}

func (e *ArcEdge) Length() float64 { return e.radius * math.Abs(e.sweep) }

func (e *ArcEdge) StartVertex() brep.Vertex { return e.v0 }
func (e *ArcEdge) EndVertex() brep.Vertex   { return e.v1 }

func (e *ArcEdge) IsDegenerated(tol float64) bool { return e.Length() < tol }

func (e *ArcEdge) ProjectPoint(p r3.Vec) (r3.Vec, float64) {
	d := r3.Sub(p, e.center)
	x := r3.Dot(d, e.u)
	y := r3.Dot(d, e.w)
	if x == 0 && y == 0 {
		return e.v0.P, 0
	}
	phi := math.Atan2(y, x)
	if e.sweep >= 0 {
		if phi < 0 {
			phi += 2 * math.Pi
		}
	} else {
		if phi > 0 {
			phi -= 2 * math.Pi
		}
	}
	t := phi / e.sweep
	if t > 1 {
		// beyond the swept range: snap to the nearer endpoint
		if math.Abs(phi-e.sweep) < math.Abs(phi-2*math.Pi*sign(e.sweep)) {
			t = 1
		} else {
			t = 0
		}
	}
	t = clamp01(t)
	return e.GetPoint(t), t
}

func (e *ArcEdge) Domains() (in, out int) { return e.DomIn, e.DomOut }

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
