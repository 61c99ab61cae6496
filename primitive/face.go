package primitive

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
	"github.com/soypat/brep/internal/d3"
)

// PlanarFace is a flat parallelogram patch origin + u*du + v*dv with
// (u,v) in the unit square. The outward normal is unit(du x dv).
type PlanarFace struct {
	info    brep.ShapeInfo
	origin  r3.Vec
	du, dv  r3.Vec
	edges   []brep.Edge
	domIn   int
	domOut  int
}

var _ brep.Face = (*PlanarFace)(nil)

// NewPlanarFace returns the patch spanned by du and dv from origin,
// bounded by edges. The edges must form the closed patch boundary.
func NewPlanarFace(origin, du, dv r3.Vec, edges ...brep.Edge) *PlanarFace {
	return &PlanarFace{origin: origin, du: du, dv: dv, edges: edges, domIn: 0, domOut: -1}
}

func (f *PlanarFace) Info() *brep.ShapeInfo { return &f.info }
func (f *PlanarFace) Kind() brep.Kind       { return brep.KindFace }
func (f *PlanarFace) Center() r3.Vec        { return f.GetPoint(r2.Vec{X: 0.5, Y: 0.5}) }

func (f *PlanarFace) GetPoint(uv r2.Vec) r3.Vec {
	return r3.Add(f.origin, r3.Add(r3.Scale(uv.X, f.du), r3.Scale(uv.Y, f.dv)))
}

func (f *PlanarFace) GetCurvature(uv r2.Vec) float64 { return 0 }

// Project solves the 2x2 Gram system of the spanning vectors for the
// parametric coordinates of the in-plane component of p.
func (f *PlanarFace) Project(p r3.Vec) r2.Vec {
	d := r3.Sub(p, f.origin)
	a := r3.Dot(f.du, f.du)
	b := r3.Dot(f.du, f.dv)
	c := r3.Dot(f.dv, f.dv)
	pu := r3.Dot(d, f.du)
	pv := r3.Dot(d, f.dv)
	det := a*c - b*b
	return r2.Vec{
		X: (c*pu - b*pv) / det,
		Y: (a*pv - b*pu) / det,
	}
}

func (f *PlanarFace) ProjectPoint(p r3.Vec) r3.Vec { return f.GetPoint(f.Project(p)) }

func (f *PlanarFace) GetNormal(p r3.Vec) r3.Vec { return r3.Unit(r3.Cross(f.du, f.dv)) }

func (f *PlanarFace) Edges() []brep.Edge { return f.edges }

func (f *PlanarFace) Bounds() r3.Box {
	box := d3.Box{Min: f.origin, Max: f.origin}
	for _, c := range []r3.Vec{
		r3.Add(f.origin, f.du),
		r3.Add(f.origin, f.dv),
		r3.Add(f.origin, r3.Add(f.du, f.dv)),
	} {
		box = box.Include(c)
	}
	return r3.Box(box)
}

func (f *PlanarFace) Domains() (in, out int) { return f.domIn, f.domOut }
