package meshing_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep/mesh"
	"github.com/soypat/brep/meshing"
	"github.com/soypat/brep/primitive"
)

func TestAnalyseEdgeLengthRestriction(t *testing.T) {
	g := primitive.Box("box", r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	g.Dimension = 2
	g.ProcessIdentifications()

	mp := meshing.DefaultParameters()
	mp.MaxH = 10
	mp.SegmentsPerEdge = 2

	pl := meshing.Pipeline{Geometry: g}
	var m mesh.Mesh
	require.NoError(t, pl.Analyse(&m, &mp))

	// two segments per unit edge cap the size at 0.5 along the edges
	h := m.GetH(r3.Vec{X: 0.5}, 1)
	require.LessOrEqual(t, h, 0.5)
	require.Greater(t, h, 0.1)
}

func TestAnalyseCloseEdges(t *testing.T) {
	const gap = 0.05
	newPlates := func() *meshing.Pipeline {
		g := primitive.Plates("plates", 4, 4, gap)
		g.Dimension = 2
		g.ProcessIdentifications()
		return &meshing.Pipeline{Geometry: g}
	}
	probe := r3.Vec{X: 2, Y: 0, Z: 0} // middle of a long bottom edge

	mp := meshing.DefaultParameters()
	mp.MaxH = 1
	var coarse mesh.Mesh
	require.NoError(t, newPlates().Analyse(&coarse, &mp))
	hWithout := coarse.GetH(probe, 1)

	closeEdgeFac := 2.0
	mp.CloseEdgeFac = &closeEdgeFac
	var fine mesh.Mesh
	require.NoError(t, newPlates().Analyse(&fine, &mp))
	hWith := fine.GetH(probe, 1)

	require.Less(t, hWith, hWithout)
	// the top edge passes at distance gap, divided by the factor
	require.InDelta(t, gap/closeEdgeFac, hWith, 0.01)
}

func TestAnalyseMeshSizePoints(t *testing.T) {
	g := primitive.Box("box", r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	g.Dimension = 2
	g.ProcessIdentifications()

	mp := meshing.DefaultParameters()
	mp.MaxH = 1
	pin := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	mp.MeshSizePoints = append(mp.MeshSizePoints, meshing.MeshSizePoint{Point: pin, H: 0.01, Layer: 1})

	pl := meshing.Pipeline{Geometry: g}
	var m mesh.Mesh
	require.NoError(t, pl.Analyse(&m, &mp))
	require.LessOrEqual(t, m.GetH(pin, 1), 0.01)
	// grading lets the size recover away from the pin
	require.Greater(t, m.GetH(r3.Vec{X: 0.95, Y: 0.95, Z: 0.95}, 1), 0.05)
}
