package meshing

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep/mesh"
)

func TestFanMesherSquare(t *testing.T) {
	var m mesh.Mesh
	fm := &FanMesher{}
	pts := []r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	for _, p := range pts {
		glob := m.AddPoint(p, 1, mesh.SurfacePoint)
		fm.AddPoint(p, glob)
	}
	for i := range pts {
		fm.AddBoundaryElement(i+1, (i+1)%4+1, mesh.PointGeomInfo{}, mesh.PointGeomInfo{})
	}
	mp := DefaultParameters()
	if err := fm.GenerateMesh(&m, &mp, 1, 1); err != nil {
		t.Fatal(err)
	}
	if m.NSE() != 2 {
		t.Fatalf("got %d elements, want 2", m.NSE())
	}
	// both triangles fan out of the first boundary point
	for _, el := range m.SurfaceElements() {
		if el.NP() != 3 {
			t.Errorf("got %d corners, want 3", el.NP())
		}
		if el.PNums[0] != 0 {
			t.Errorf("fan apex = %d, want 0", el.PNums[0])
		}
	}
}

func TestFanMesherDegenerateBoundary(t *testing.T) {
	var m mesh.Mesh
	mp := DefaultParameters()

	fm := &FanMesher{}
	fm.AddBoundaryElement(1, 2, mesh.PointGeomInfo{}, mesh.PointGeomInfo{})
	fm.AddBoundaryElement(2, 1, mesh.PointGeomInfo{}, mesh.PointGeomInfo{})
	if err := fm.GenerateMesh(&m, &mp, 1, 1); err == nil {
		t.Error("expected error for two segment boundary")
	}

	fm = &FanMesher{}
	fm.AddBoundaryElement(1, 2, mesh.PointGeomInfo{}, mesh.PointGeomInfo{})
	fm.AddBoundaryElement(2, 3, mesh.PointGeomInfo{}, mesh.PointGeomInfo{})
	fm.AddBoundaryElement(3, 4, mesh.PointGeomInfo{}, mesh.PointGeomInfo{})
	if err := fm.GenerateMesh(&m, &mp, 1, 1); err == nil {
		t.Error("expected error for open boundary")
	}
}
