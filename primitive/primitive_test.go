package primitive

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
	"github.com/soypat/brep/internal/d3"
)

func vecNear(t *testing.T, got, want r3.Vec, tol float64) {
	t.Helper()
	if !d3.EqualWithin(got, want, tol) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLineEdgeProjectPoint(t *testing.T) {
	e := NewLineEdge(NewVertex(r3.Vec{}), NewVertex(r3.Vec{X: 2}))

	p, tp := e.ProjectPoint(r3.Vec{X: 0.5, Y: 1})
	if tp != 0.25 {
		t.Errorf("got t = %g, want 0.25", tp)
	}
	vecNear(t, p, r3.Vec{X: 0.5}, 1e-12)

	// beyond the ends the projection clamps to the vertices
	p, tp = e.ProjectPoint(r3.Vec{X: -1})
	if tp != 0 {
		t.Errorf("got t = %g, want 0", tp)
	}
	vecNear(t, p, r3.Vec{}, 1e-12)

	_, tp = e.ProjectPoint(r3.Vec{X: 5, Z: 2})
	if tp != 1 {
		t.Errorf("got t = %g, want 1", tp)
	}
}

func TestArcEdgeQuarter(t *testing.T) {
	v0 := NewVertex(r3.Vec{X: 1})
	v1 := NewVertex(r3.Vec{Y: 1})
	e := NewArcEdge(v0, v1, r3.Vec{}, r3.Vec{Z: 1}, math.Pi/2)

	if got := e.Length(); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("length = %g, want %g", got, math.Pi/2)
	}
	vecNear(t, e.GetPoint(0), v0.P, 1e-12)
	vecNear(t, e.GetPoint(1), v1.P, 1e-12)
	s := math.Sqrt(0.5)
	vecNear(t, e.GetPoint(0.5), r3.Vec{X: s, Y: s}, 1e-12)

	// tangent at the start runs along +y with magnitude radius*sweep
	vecNear(t, e.GetTangent(0), r3.Vec{Y: math.Pi / 2}, 1e-12)

	p, tp := e.ProjectPoint(r3.Vec{X: 2, Y: 2})
	if math.Abs(tp-0.5) > 1e-12 {
		t.Errorf("got t = %g, want 0.5", tp)
	}
	vecNear(t, p, r3.Vec{X: s, Y: s}, 1e-12)

	// a point behind the start snaps to the nearer endpoint
	_, tp = e.ProjectPoint(r3.Vec{X: 1, Y: -0.1})
	if tp != 0 {
		t.Errorf("got t = %g, want 0", tp)
	}

	if step := e.CalcStep(0, 0.02); step <= 0 || step > 2 {
		t.Errorf("step = %g out of range", step)
	}
}

func TestPlanarFaceProject(t *testing.T) {
	// skewed patch so that the spanning vectors are not orthogonal
	f := NewPlanarFace(r3.Vec{X: 1}, r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1})

	uv := r2.Vec{X: 0.3, Y: 0.7}
	back := f.Project(f.GetPoint(uv))
	if math.Abs(back.X-uv.X) > 1e-12 || math.Abs(back.Y-uv.Y) > 1e-12 {
		t.Errorf("round trip gave %v, want %v", back, uv)
	}

	// out of plane components drop out
	p := f.GetPoint(uv)
	p.Z = 3
	vecNear(t, f.ProjectPoint(p), f.GetPoint(uv), 1e-12)

	vecNear(t, f.GetNormal(p), r3.Vec{Z: 1}, 1e-12)
	if f.GetCurvature(uv) != 0 {
		t.Error("planar face must have zero curvature")
	}

	bb := f.Bounds()
	vecNear(t, bb.Min, r3.Vec{X: 1}, 1e-12)
	vecNear(t, bb.Max, r3.Vec{X: 3, Y: 1}, 1e-12)
}

func TestBoxTopology(t *testing.T) {
	lo := r3.Vec{}
	hi := r3.Vec{X: 1, Y: 2, Z: 3}
	g := Box("b", lo, hi)

	if len(g.Vertices) != 8 || len(g.Edges) != 12 || len(g.Faces) != 6 || len(g.Solids) != 1 {
		t.Fatalf("got %d/%d/%d/%d shapes", len(g.Vertices), len(g.Edges), len(g.Faces), len(g.Solids))
	}
	if g.BoundingBox.Min != lo || g.BoundingBox.Max != hi {
		t.Errorf("bounding box %v", g.BoundingBox)
	}

	mid := r3.Scale(0.5, r3.Add(lo, hi))
	for k, f := range g.Faces {
		// every boundary edge lists the face as one of its domains
		for _, be := range f.Edges() {
			in, out := be.Domains()
			if in != k && out != k {
				t.Errorf("face %d missing from domains (%d, %d) of a boundary edge", k, in, out)
			}
		}
		// normals point away from the box center
		if r3.Dot(f.GetNormal(f.Center()), r3.Sub(f.Center(), mid)) <= 0 {
			t.Errorf("face %d normal points inward", k)
		}
	}

	// each edge is shared by exactly two faces
	for _, e := range g.Edges {
		n := 0
		for _, f := range g.Faces {
			for _, be := range f.Edges() {
				if be == e {
					n++
				}
			}
		}
		if n != 2 {
			t.Errorf("edge shared by %d faces, want 2", n)
		}
	}
}

func TestPlatesIdentification(t *testing.T) {
	const gap = 0.1
	g := Plates("p", 2, 2, gap)

	idents := g.Faces[0].Info().Identifications
	if len(idents) != 1 {
		t.Fatalf("got %d identifications, want 1", len(idents))
	}
	id := idents[0]
	if id.Kind != brep.CloseSurfaces {
		t.Errorf("got kind %d", id.Kind)
	}
	if id.To != g.Faces[1] {
		t.Error("identification does not target the top face")
	}
	// the transform carries the bottom face onto the top one
	vecNear(t, id.Trafo.Apply(g.Faces[0].Center()), g.Faces[1].Center(), 1e-12)
}
