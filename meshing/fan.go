package meshing

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
	"github.com/soypat/brep/mesh"
)

// FanMesher triangulates a face by fanning from the first boundary point.
// It produces valid meshes for convex single loop boundaries only and
// ignores interior points, which makes it suitable for plates, ribbons
// and tests; production use wants a proper Delaunay SurfaceMesher behind
// the same interface.
type FanMesher struct {
	points []fanPoint
	bels   []fanBoundary
}

type fanPoint struct {
	p    r3.Vec
	glob mesh.PointIndex
}

type fanBoundary struct {
	i1, i2   int
	gi0, gi1 mesh.PointGeomInfo
}

// NewFanMesher is a SurfaceMesherFactory returning a FanMesher.
func NewFanMesher(f brep.Face, mp *Parameters, bbox r3.Box) SurfaceMesher {
	return &FanMesher{}
}

var _ SurfaceMesherFactory = NewFanMesher

func (fm *FanMesher) AddPoint(p r3.Vec, glob mesh.PointIndex) {
	fm.points = append(fm.points, fanPoint{p: p, glob: glob})
}

func (fm *FanMesher) AddProjectedPoint(p r3.Vec, glob mesh.PointIndex, uv r2.Vec) {
	// interior points are not connected by the fan
	fm.points = append(fm.points, fanPoint{p: p, glob: glob})
}

func (fm *FanMesher) AddBoundaryElement(i1, i2 int, gi0, gi1 mesh.PointGeomInfo) {
	fm.bels = append(fm.bels, fanBoundary{i1: i1, i2: i2, gi0: gi0, gi1: gi1})
}

func (fm *FanMesher) GenerateMesh(m *mesh.Mesh, mp *Parameters, maxh float64, layer int) error {
	if len(fm.bels) < 3 {
		return errors.New("meshing: fan mesher needs at least three boundary segments")
	}
	next := make(map[int]int, len(fm.bels))
	giOf := make(map[int]mesh.PointGeomInfo, len(fm.bels))
	for _, b := range fm.bels {
		next[b.i1] = b.i2
		giOf[b.i1] = b.gi0
		if _, ok := giOf[b.i2]; !ok {
			giOf[b.i2] = b.gi1
		}
	}

	start := fm.bels[0].i1
	loop := []int{start}
	for cur := next[start]; cur != start; cur = next[cur] {
		if cur == 0 {
			return errors.New("meshing: fan mesher: open boundary loop")
		}
		loop = append(loop, cur)
		if len(loop) > len(fm.bels) {
			return errors.New("meshing: fan mesher: boundary is not a single loop")
		}
	}
	if len(loop) != len(fm.bels) {
		return errors.New("meshing: fan mesher: boundary has multiple loops")
	}

	for i := 1; i+1 < len(loop); i++ {
		el := mesh.NewElement2d(3)
		el.PNums[0] = fm.points[loop[0]-1].glob
		el.PNums[1] = fm.points[loop[i]-1].glob
		el.PNums[2] = fm.points[loop[i+1]-1].glob
		el.GeomInfo[0] = giOf[loop[0]]
		el.GeomInfo[1] = giOf[loop[i]]
		el.GeomInfo[2] = giOf[loop[i+1]]
		m.AddSurfaceElement(el)
	}
	return nil
}
