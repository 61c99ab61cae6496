package meshing_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
	"github.com/soypat/brep/mesh"
	"github.com/soypat/brep/meshing"
	"github.com/soypat/brep/primitive"
)

func TestGenerateMeshBox(t *testing.T) {
	g := primitive.Box("steel", r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	g.Dimension = 2
	g.ProcessIdentifications()

	mp := meshing.DefaultParameters()
	mp.MaxH = 0.25

	pl := meshing.Pipeline{
		Geometry:         g,
		NewSurfaceMesher: meshing.NewFanMesher,
	}
	var m mesh.Mesh
	require.NoError(t, pl.GenerateMesh(&m, &mp))

	// 8 corners plus 3 interior points on each of the 12 edges
	require.Equal(t, 8+12*3, m.NP())
	// each face boundary carries 16 segments, the fan closes it with 14
	// triangles
	require.Equal(t, 6*14, m.NSE())
	require.Equal(t, 6, m.NFD())
	require.Equal(t, 2, m.Dimension())
	require.Equal(t, "steel", m.Material(1))

	for k := 0; k < 6; k++ {
		els := m.SurfaceElementsOfFace(k + 1)
		require.Lenf(t, els, 14, "face %d", k+1)
	}
	// elements are brought into face order on finalization
	last := 0
	for _, el := range m.SurfaceElements() {
		require.GreaterOrEqual(t, el.Index(), last)
		last = el.Index()
	}
}

func TestGenerateMeshWire(t *testing.T) {
	v0 := primitive.NewVertex(r3.Vec{})
	v1 := primitive.NewVertex(r3.Vec{X: 1})
	e := primitive.NewLineEdge(v0, v1)
	e.DomIn = 0
	geom := &brep.Geometry{
		Vertices:  []brep.Vertex{v0, v1},
		Edges:     []brep.Edge{e},
		Dimension: 1,
		BoundingBox: r3.Box{
			Min: r3.Vec{X: -0.1, Y: -0.1, Z: -0.1},
			Max: r3.Vec{X: 1.1, Y: 0.1, Z: 0.1},
		},
	}
	geom.ProcessIdentifications()

	mp := meshing.DefaultParameters()
	mp.MaxH = 0.25

	pl := meshing.Pipeline{Geometry: geom}
	var m mesh.Mesh
	require.NoError(t, pl.GenerateMesh(&m, &mp))
	require.Equal(t, 1, m.Dimension())
	require.Len(t, m.Segments(), 4)
	require.Equal(t, 5, m.NP())
	require.Len(t, m.PointElements(), 2)
}

type cancelledObserver struct{ meshing.NopObserver }

func (cancelledObserver) Cancelled() bool { return true }

func TestGenerateMeshCancellation(t *testing.T) {
	g := primitive.Box("box", r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	g.Dimension = 2
	g.ProcessIdentifications()

	mp := meshing.DefaultParameters()
	mp.MaxH = 0.25

	pl := meshing.Pipeline{
		Geometry:         g,
		NewSurfaceMesher: meshing.NewFanMesher,
		Progress:         cancelledObserver{},
	}
	var m mesh.Mesh
	require.NoError(t, pl.GenerateMesh(&m, &mp))
	// cancellation between stages leaves the edge mesh unbuilt
	require.Empty(t, m.Segments())
	require.Zero(t, m.NSE())
}

func TestGenerateMeshStepWindow(t *testing.T) {
	g := primitive.Box("box", r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	g.Dimension = 2
	g.ProcessIdentifications()

	mp := meshing.DefaultParameters()
	mp.MaxH = 0.25
	mp.StepEnd = meshing.StepMeshEdges

	pl := meshing.Pipeline{
		Geometry:         g,
		NewSurfaceMesher: meshing.NewFanMesher,
	}
	var m mesh.Mesh
	require.NoError(t, pl.GenerateMesh(&m, &mp))
	require.NotEmpty(t, m.Segments())
	require.Zero(t, m.NSE())
}
