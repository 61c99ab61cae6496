package meshing

import (
	"errors"
	"fmt"

	"github.com/soypat/brep"
	"github.com/soypat/brep/mesh"
)

// Pipeline generates a mesh for one geometry. The collaborator fields
// configure the external meshing algorithms; only the ones reached by the
// requested steps and the geometry dimension need to be set.
type Pipeline struct {
	Geometry *brep.Geometry

	// NewSurfaceMesher builds the 2D mesher invoked per generic face.
	NewSurfaceMesher SurfaceMesherFactory
	// NewOptimizer builds the surface optimizer. Nil disables surface
	// optimization.
	NewOptimizer SurfaceOptimizerFactory
	// Volume meshes and optimizes the interior for 3D geometries.
	Volume VolumeMesher

	// Progress receives task and percentage updates and can cancel the
	// run between stages. Nil means no reporting and no cancellation.
	Progress Observer

	// FaceVertices optionally lists geometry vertices lying in the
	// interior of a face, to be pinned into its surface mesh.
	FaceVertices func(brep.Face) []brep.Vertex
}

func (pl *Pipeline) observer() Observer {
	if pl.Progress != nil {
		return pl.Progress
	}
	return NopObserver{}
}

// FinalizeMesh names the mesh domains after the geometry solids and
// brings the elements into face order.
func (pl *Pipeline) FinalizeMesh(m *mesh.Mesh) {
	g := pl.Geometry
	n := len(g.Solids)
	if nd := m.NDomains(); nd < n {
		n = nd
	}
	for i := 0; i < n; i++ {
		if name := g.Solids[i].Info().Properties.Name; name != "" {
			m.SetMaterial(i+1, name)
		}
	}
	m.OrderElements()
}

// GenerateMesh runs the pipeline stages selected by mp.StepStart and
// mp.StepEnd over the geometry, appending to m. Cancellation through the
// observer stops between stages and returns a nil error with the mesh in
// its last consistent state.
func (pl *Pipeline) GenerateMesh(m *mesh.Mesh, mp *Parameters) error {
	g := pl.Geometry
	obs := pl.observer()

	// run on a copy so that geometry pinned sizes do not leak back
	params := *mp
	if len(g.RestrictedH) > 0 {
		params.MeshSizePoints = append([]MeshSizePoint(nil), mp.MeshSizePoints...)
		for _, rh := range g.RestrictedH {
			params.MeshSizePoints = append(params.MeshSizePoints, MeshSizePoint{Point: rh.Point, H: rh.H, Layer: 1})
		}
	}

	if params.StepStart <= StepAnalyse {
		if err := pl.Analyse(m, &params); err != nil {
			return err
		}
	}
	if obs.Cancelled() || params.StepEnd <= StepAnalyse {
		return nil
	}

	if params.StepStart <= StepMeshEdges {
		if err := pl.FindEdges(m, &params); err != nil {
			return err
		}
	}
	if obs.Cancelled() || params.StepEnd <= StepMeshEdges {
		return nil
	}

	if g.Dimension == 1 {
		pl.FinalizeMesh(m)
		m.SetDimension(1)
		return nil
	}

	if params.StepStart <= StepMeshSurface {
		if err := pl.MeshSurface(m, &params); err != nil {
			return err
		}
	}
	if obs.Cancelled() || params.StepEnd <= StepOptSurface {
		return nil
	}

	if g.Dimension == 2 {
		pl.FinalizeMesh(m)
		m.SetDimension(2)
		return nil
	}

	if params.StepStart <= StepMeshVolume {
		obs.SetTask("Mesh volume")
		if pl.Volume == nil {
			return errors.New("meshing: no volume mesher configured")
		}
		if err := pl.Volume.MeshVolume(&params, m); err != nil {
			return fmt.Errorf("meshing: volume meshing: %w", err)
		}
		if obs.Cancelled() {
			return nil
		}
	}
	if obs.Cancelled() || params.StepEnd <= StepMeshVolume {
		return nil
	}

	if params.StepStart <= StepOptVolume {
		obs.SetTask("Optimize volume")
		if err := pl.Volume.OptimizeVolume(&params, m); err != nil {
			return fmt.Errorf("meshing: volume optimization: %w", err)
		}
		if obs.Cancelled() {
			return nil
		}
	}

	pl.FinalizeMesh(m)
	return nil
}
