// Package meshing drives mesh generation over a brep.Geometry: sizing
// field analysis, edge division, surface meshing of primary faces, mesh
// mapping onto identified faces and the optional volume stages.
package meshing

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Step enumerates the pipeline stages in execution order.
type Step int

const (
	StepAnalyse Step = iota + 1
	StepMeshEdges
	StepMeshSurface
	StepOptSurface
	StepMeshVolume
	StepOptVolume
)

func (s Step) String() string {
	switch s {
	case StepAnalyse:
		return "analyse"
	case StepMeshEdges:
		return "mesh edges"
	case StepMeshSurface:
		return "mesh surface"
	case StepOptSurface:
		return "optimize surface"
	case StepMeshVolume:
		return "mesh volume"
	case StepOptVolume:
		return "optimize volume"
	}
	return "unknown step"
}

// MeshSizePoint pins the local mesh size to H around Point on Layer.
type MeshSizePoint struct {
	Point r3.Vec
	H     float64
	Layer int
}

// Parameters steers the meshing pipeline. The zero value is not usable;
// start from DefaultParameters.
type Parameters struct {
	// MaxH caps the mesh size globally, MinH floors it.
	MaxH, MinH float64
	// Grading bounds the relative growth of the mesh size field, between
	// 0 (uniform) and 1 (unrestricted).
	Grading float64
	// SegmentsPerEdge is the minimal number of segments per geometry edge.
	SegmentsPerEdge float64
	// CurvatureSafety scales the curvature based size restriction: the
	// mesh size is at most 1/(CurvatureSafety*curvature).
	CurvatureSafety float64
	// UseLocalH enables the adaptive sizing field analysis.
	UseLocalH bool
	// CloseEdgeFac, when non-nil, enables the close edge detection pass
	// and divides the detected gap distance.
	CloseEdgeFac *float64

	// StepStart and StepEnd bound the executed pipeline stages, both
	// inclusive.
	StepStart, StepEnd Step

	// Optimize2d lists the surface optimization steps per round: 's'
	// (edge swapping by criterion 0), 'S' (criterion 1), 'm' (mesh
	// smoothing), 'c' (point combination).
	Optimize2d string
	// OptSteps2d is the number of surface optimization rounds.
	OptSteps2d int
	// ElSizeWeight weighs element size against element shape during
	// smoothing.
	ElSizeWeight float64

	// MeshSizePoints are user supplied mesh size restrictions.
	MeshSizePoints []MeshSizePoint
	// MeshSizeFilename optionally names a mesh size restriction file.
	MeshSizeFilename string
}

// DefaultParameters returns the parameter defaults.
func DefaultParameters() Parameters {
	return Parameters{
		MaxH:            1e10,
		Grading:         0.3,
		SegmentsPerEdge: 1,
		CurvatureSafety: 2,
		UseLocalH:       true,
		StepStart:       StepAnalyse,
		StepEnd:         StepOptVolume,
		Optimize2d:      "smsmsmSmSmSm",
		OptSteps2d:      3,
		ElSizeWeight:    0.2,
	}
}
