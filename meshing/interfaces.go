package meshing

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
	"github.com/soypat/brep/mesh"
)

// SurfaceMesher turns one face boundary into surface elements. The
// pipeline feeds it the compacted boundary points and segments, then
// calls GenerateMesh, which appends elements to m. Local point numbers
// are one based in the order points were added.
type SurfaceMesher interface {
	// AddPoint registers a boundary point with its global mesh index.
	AddPoint(p r3.Vec, glob mesh.PointIndex)
	// AddProjectedPoint registers an interior point pinned to the face at
	// the given parametric coordinates.
	AddProjectedPoint(p r3.Vec, glob mesh.PointIndex, uv r2.Vec)
	// AddBoundaryElement registers a boundary segment between two local
	// point numbers with their parametric payloads.
	AddBoundaryElement(i1, i2 int, gi0, gi1 mesh.PointGeomInfo)
	// GenerateMesh appends the face interior elements to m. Elements are
	// added without a face number; the pipeline assigns it afterwards.
	GenerateMesh(m *mesh.Mesh, mp *Parameters, maxh float64, layer int) error
}

// SurfaceMesherFactory builds a SurfaceMesher for one face. bbox is the
// face bounding box enlarged by a tenth of its diagonal.
type SurfaceMesherFactory func(f brep.Face, mp *Parameters, bbox r3.Box) SurfaceMesher

// VolumeMesher fills the closed surface mesh with volume elements and
// optionally optimizes them.
type VolumeMesher interface {
	MeshVolume(mp *Parameters, m *mesh.Mesh) error
	OptimizeVolume(mp *Parameters, m *mesh.Mesh) error
}

// SurfaceOptimizer improves the surface mesh in place. The pipeline
// selects a face, then applies the optimization steps from
// Parameters.Optimize2d in order.
type SurfaceOptimizer interface {
	SetFaceIndex(faceNr int)
	SetMetricWeight(w float64)
	// EdgeSwapping swaps diagonals; criterion 0 optimizes connectivity,
	// criterion 1 element shape.
	EdgeSwapping(criterion int)
	ImproveMesh(mp *Parameters)
	CombineImprove()
}

// SurfaceOptimizerFactory builds a SurfaceOptimizer bound to m.
type SurfaceOptimizerFactory func(m *mesh.Mesh) SurfaceOptimizer

// HRestrictor lets a face refine the sizing field itself, typically from
// an exact curvature analysis of its kernel representation. Faces that do
// not implement it are sampled over their unit parameter square instead.
type HRestrictor interface {
	RestrictH(m *mesh.Mesh, mp *Parameters)
}
