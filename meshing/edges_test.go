package meshing

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep/mesh"
	"github.com/soypat/brep/primitive"
)

func unitEdge() *primitive.LineEdge {
	v0 := primitive.NewVertex(r3.Vec{})
	v1 := primitive.NewVertex(r3.Vec{X: 1})
	return primitive.NewLineEdge(v0, v1)
}

func TestDivideEdgeUniform(t *testing.T) {
	var m mesh.Mesh
	m.SetGlobalH(0.25)
	mp := DefaultParameters()
	mp.MaxH = 0.25

	points, params := DivideEdge(unitEdge(), &mp, &m)
	if len(points) != 3 {
		t.Fatalf("got %d interior points, want 3", len(points))
	}
	if len(params) != 5 {
		t.Fatalf("got %d params, want 5", len(params))
	}
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i, p := range params {
		if diff := p - want[i]; diff > 1e-8 || diff < -1e-8 {
			t.Errorf("params[%d] = %g, want %g", i, p, want[i])
		}
	}
	for i, p := range points {
		if diff := p.X - want[i+1]; diff > 1e-8 || diff < -1e-8 {
			t.Errorf("points[%d].X = %g, want %g", i, p.X, want[i+1])
		}
	}
}

func TestDivideEdgeSingleSegment(t *testing.T) {
	var m mesh.Mesh
	m.SetGlobalH(10)
	mp := DefaultParameters()

	points, params := DivideEdge(unitEdge(), &mp, &m)
	if len(points) != 0 {
		t.Errorf("got %d interior points, want 0", len(points))
	}
	if len(params) != 2 || params[0] != 0 || params[1] != 1 {
		t.Errorf("got params %v, want [0 1]", params)
	}
}

func TestDivideEdgePartitionOverride(t *testing.T) {
	var m mesh.Mesh
	m.SetGlobalH(0.25)
	mp := DefaultParameters()

	e := unitEdge()
	e.Info().Properties.Partition = []float64{0.1, 0.9}
	points, params := DivideEdge(e, &mp, &m)
	if len(points) != 2 {
		t.Fatalf("got %d interior points, want 2", len(points))
	}
	if points[0].X != 0.1 || points[1].X != 0.9 {
		t.Errorf("partition points not honored: %v", points)
	}
	wantParams := []float64{0, 0.1, 0.9, 1}
	for i, p := range params {
		if p != wantParams[i] {
			t.Errorf("params[%d] = %g, want %g", i, p, wantParams[i])
		}
	}
}
