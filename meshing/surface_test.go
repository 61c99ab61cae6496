package meshing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soypat/brep/mesh"
	"github.com/soypat/brep/meshing"
	"github.com/soypat/brep/primitive"
)

func TestGenerateMeshPlates(t *testing.T) {
	g := primitive.Plates("plates", 4, 4, 0.05)
	g.Dimension = 2
	g.ProcessIdentifications()

	mp := meshing.DefaultParameters()
	mp.MaxH = 0.5

	pl := meshing.Pipeline{
		Geometry:         g,
		NewSurfaceMesher: meshing.NewFanMesher,
	}
	var m mesh.Mesh
	require.NoError(t, pl.GenerateMesh(&m, &mp))
	require.Equal(t, 6, m.NFD())

	// the top plate is a mapped copy of the bottom one
	bottom := m.SurfaceElementsOfFace(1)
	top := m.SurfaceElementsOfFace(2)
	require.NotEmpty(t, bottom)
	require.Len(t, top, len(bottom))

	// the four side faces bridge the gap with quads, one per bottom
	// boundary segment
	els := m.SurfaceElements()
	for face := 3; face <= 6; face++ {
		side := m.SurfaceElementsOfFace(face)
		require.NotEmptyf(t, side, "face %d", face)
		for _, ei := range side {
			require.Equalf(t, 4, els[ei].NP(), "face %d element %d", face, ei)
		}
	}

	idf := m.Identifications()
	require.Greater(t, idf.N(), 0)
	pairs := 0
	for nr := 1; nr <= idf.N(); nr++ {
		pairs += len(idf.Pairs(nr))
	}
	require.Greater(t, pairs, 0)
}
