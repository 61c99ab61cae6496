package meshing

import (
	"errors"
	"fmt"
	"log"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
	"github.com/soypat/brep/internal/d2"
	"github.com/soypat/brep/internal/d3"
	"github.com/soypat/brep/mesh"
)

// boundarySegments returns the mesh segments bounding f, oriented so the
// face lies on the in side, with the parametric payload of both endpoints
// projected onto f.
func (pl *Pipeline) boundarySegments(f brep.Face, m *mesh.Mesh) []mesh.Segment {
	fnr1 := f.Info().Nr + 1
	var out []mesh.Segment
	for _, seg := range m.Segments() {
		s := seg
		switch fnr1 {
		case seg.DomIn:
		case seg.DomOut:
			s.P[0], s.P[1] = s.P[1], s.P[0]
			s.GeomInfo[0], s.GeomInfo[1] = s.GeomInfo[1], s.GeomInfo[0]
		default:
			continue
		}
		for i := range s.P {
			uv := f.Project(m.Point(s.P[i]).Vec)
			s.GeomInfo[i].U = uv.X
			s.GeomInfo[i].V = uv.Y
		}
		out = append(out, s)
	}
	return out
}

// meshFace feeds the boundary of face k to the surface mesher and assigns
// the produced elements to the face.
func (pl *Pipeline) meshFace(m *mesh.Mesh, mp *Parameters, k int, face brep.Face) error {
	if pl.NewSurfaceMesher == nil {
		return errors.New("meshing: no surface mesher configured")
	}
	bb := d3.Box(face.Bounds())
	grow := r3.Norm(bb.Size()) / 5
	bb = bb.Enlarge(d3.Elem(grow))
	mesher := pl.NewSurfaceMesher(face, mp, r3.Box(bb))

	glob2loc := map[mesh.PointIndex]int{}
	cntp := 0

	segments := pl.boundarySegments(face, m)
	for _, seg := range segments {
		for _, pi := range seg.P {
			if glob2loc[pi] == 0 {
				mesher.AddPoint(m.Point(pi).Vec, pi)
				cntp++
				glob2loc[pi] = cntp
			}
		}
	}
	if pl.FaceVertices != nil {
		// pin interior geometry vertices into the face mesh
		for _, vert := range pl.FaceVertices(face) {
			pi := mesh.PointIndex(vert.Info().Nr)
			if glob2loc[pi] == 0 {
				p := m.Point(pi).Vec
				mesher.AddProjectedPoint(p, pi, face.Project(p))
				cntp++
				glob2loc[pi] = cntp
			}
		}
	}
	for _, seg := range segments {
		gi0 := mesh.PointGeomInfo{TrigNum: k + 1, U: seg.GeomInfo[0].U, V: seg.GeomInfo[0].V}
		gi1 := mesh.PointGeomInfo{TrigNum: k + 1, U: seg.GeomInfo[1].U, V: seg.GeomInfo[1].V}
		mesher.AddBoundaryElement(glob2loc[seg.P[0]], glob2loc[seg.P[1]], gi0, gi1)
	}

	nold := m.NSE()
	err := mesher.GenerateMesh(m, mp, mp.MaxH, face.Info().Properties.Layer)
	els := m.SurfaceElements()
	for i := nold; i < m.NSE(); i++ {
		els[i].SetIndex(k + 1)
	}
	return err
}

// meshRibbonFace meshes a face all of whose boundary vertices pair up
// under close surface identifications: every boundary segment with a
// mapped partner becomes one connecting quad instead of triangulating the
// interior.
func (pl *Pipeline) meshRibbonFace(m *mesh.Mesh, face brep.Face) error {
	g := pl.Geometry
	segments := pl.boundarySegments(face, m)

	relevantEdges := map[int]bool{}
	for _, s := range segments {
		relevantEdges[s.EdgeNr-1] = true
	}

	isPointInTree := make([]bool, m.NP())
	tree := NewPointTree(g.BoundingBox)
	for _, s := range segments {
		for _, pi := range s.P {
			if !isPointInTree[pi] {
				tree.Insert(m.Point(pi).Vec, pi, -1)
				isPointInTree[pi] = true
			}
		}
	}

	const (
		uninitialized = -2
		notMapped     = -1
	)
	mappedEdges := make([]int, len(g.Edges))
	for i := range mappedEdges {
		mappedEdges[i] = uninitialized
	}
	var trafo *brep.Transform

	p2seg := map[mesh.PointIndex][]int{}
	for si, s := range segments {
		p2seg[s.P[0]] = append(p2seg[s.P[0]], si)
		p2seg[s.P[1]] = append(p2seg[s.P[1]], si)
	}

	for _, s := range segments {
		edgenr := s.EdgeNr - 1
		edge := g.Edges[edgenr]

		// first time we see this edge: search for a close surface partner
		// among the face boundary edges
		if mappedEdges[edgenr] == uninitialized {
			mappedEdges[edgenr] = notMapped
			for _, ei := range edge.Info().Identifications {
				if ei.Kind == brep.CloseSurfaces &&
					ei.From.Info().Nr == edgenr &&
					relevantEdges[ei.To.Info().Nr] {
					trafo = ei.Trafo
					mappedEdges[edgenr] = ei.To.Info().Nr
					break
				}
			}
		}

		if mappedEdges[edgenr] == notMapped {
			continue
		}

		sel := mesh.NewElement2d(4)
		sel.PNums[0], sel.PNums[1] = s.P[0], s.P[1]
		for i := 0; i < 2; i++ {
			sel.GeomInfo[i].U = s.GeomInfo[i].U
			sel.GeomInfo[i].V = s.GeomInfo[i].V
		}

		p2 := m.Point(s.P[1]).Vec
		p3 := m.Point(s.P[0]).Vec
		if trafo != nil {
			p2 = trafo.Apply(p2)
			p3 = trafo.Apply(p3)
		} else {
			p2, _ = g.Edges[mappedEdges[edgenr]].ProjectPoint(p2)
			p3, _ = g.Edges[mappedEdges[edgenr]].ProjectPoint(p3)
		}
		pi2, err := tree.Find(p2, -1)
		if err != nil {
			return fmt.Errorf("meshing: connecting quad corner: %w", err)
		}
		pi3, err := tree.Find(p3, -1)
		if err != nil {
			return fmt.Errorf("meshing: connecting quad corner: %w", err)
		}
		sel.PNums[2], sel.PNums[3] = pi2, pi3

		// locate the partner segment to carry its parametric payload onto
		// the far quad corners
		var sOther mesh.Segment
		for _, siOther := range p2seg[sel.PNums[2]] {
			sOther = segments[siOther]
			if sOther.P[0] == sel.PNums[2] && sOther.P[1] == sel.PNums[3] {
				break
			}
			if sOther.P[0] == sel.PNums[3] && sOther.P[1] == sel.PNums[2] {
				break
			}
		}
		for i := 0; i < 2; i++ {
			iOther := i
			if sel.PNums[i+2] != sOther.P[i] {
				iOther = 1 - i
			}
			sel.GeomInfo[i+2].U = sOther.GeomInfo[iOther].U
			sel.GeomInfo[i+2].V = sOther.GeomInfo[iOther].V
		}

		sel.SetIndex(face.Info().Nr + 1)
		m.AddSurfaceElement(sel)
	}
	return nil
}

type mapKey struct {
	pi   mesh.PointIndex
	face int
}

// MeshSurface meshes all primary faces, optimizes the result, copies the
// meshes of primary faces onto their identified partners and records the
// resulting point identifications.
func (pl *Pipeline) MeshSurface(m *mesh.Mesh, mp *Parameters) error {
	g := pl.Geometry
	obs := pl.observer()
	obs.SetTask("Mesh surface")
	m.ClearFaceDescriptors()

	nFailed := 0
	for k, face := range g.Faces {
		obs.SetPercent(100 * float64(k) / float64(len(g.Faces)))
		if obs.Cancelled() {
			return nil
		}
		in, out := face.Domains()
		fd := mesh.FaceDescriptor{SurfNr: k + 1, DomIn: in + 1, DomOut: out + 1, BCProp: k + 1}
		fd.Colour = face.Info().Properties.Col
		m.AddFaceDescriptor(fd)
		m.SetBCName(k, face.Info().Properties.GetName())

		if face.Info().Primary != brep.Shape(face) {
			continue
		}
		if brep.IsConnectingCloseSurfaces(face) {
			if err := pl.meshRibbonFace(m, face); err != nil {
				return err
			}
		} else if err := pl.meshFace(m, mp, k, face); err != nil {
			log.Printf("meshing: face %d failed: %v", k+1, err)
			nFailed++
		}
	}

	if nFailed > 0 {
		log.Printf("meshing: surface meshing failed on %d faces, skipping optimization", nFailed)
		return nil
	}

	if mp.StepEnd >= StepOptSurface {
		m.CalcSurfacesOfNode()
		pl.OptimizeSurface(m, mp)
	}

	haveIdentifications := false
	mapto := map[mapKey]mesh.PointIndex{}
	for _, face := range g.Faces {
		if face.Info().Primary != brep.Shape(face) {
			haveIdentifications = true
			if err := pl.MapSurfaceMesh(m, face, mapto); err != nil {
				return err
			}
		}
	}

	if haveIdentifications {
		m.CalcSurfacesOfNode()
		isIdentifiedFace := make([]bool, len(g.Faces))
		for _, face := range g.Faces {
			for _, ident := range face.Info().Identifications {
				isIdentifiedFace[ident.From.Info().Nr] = true
				isIdentifiedFace[ident.To.Info().Nr] = true
			}
		}

		// collect the interior surface points per identified face
		piToFace := make([]int, m.NP())
		for i := range piToFace {
			piToFace[i] = -1
		}
		piOfFace := make([][]mesh.PointIndex, len(g.Faces))
		els := m.SurfaceElements()
		for _, face := range g.Faces {
			fnr := face.Info().Nr
			if !isIdentifiedFace[fnr] {
				continue
			}
			for _, sei := range m.SurfaceElementsOfFace(fnr + 1) {
				for _, pi := range els[sei].PNums {
					if m.Point(pi).Type == mesh.SurfacePoint && piToFace[pi] == -1 {
						piToFace[pi] = fnr
						piOfFace[fnr] = append(piOfFace[fnr], pi)
					}
				}
			}
		}

		meshIdent := m.Identifications()
		for _, face := range g.Faces {
			for _, ident := range face.Info().Identifications {
				if ident.From != brep.Shape(face) {
					continue
				}
				for _, pi := range piOfFace[face.Info().Nr] {
					piPrimary := pi
					if ident.From.Info().Primary.Info().Nr != ident.From.Info().Nr {
						piPrimary = mapto[mapKey{pi, ident.To.Info().Primary.Info().Nr}]
					}
					piOther := piPrimary
					if ident.To.Info().Primary.Info().Nr != ident.To.Info().Nr {
						piOther = mapto[mapKey{piPrimary, ident.To.Info().Nr}]
					}
					meshIdent.Add(pi, piOther, ident.Name, meshIdentType(ident.Kind))
				}
			}
		}
	}

	m.CalcSurfacesOfNode()
	return nil
}

type invertState int

const (
	invertMaybe invertState = iota
	invertYes
	invertNo
)

// MapSurfaceMesh copies the surface mesh of dst's primary face onto dst,
// transforming points when a transformation chain is known and projecting
// otherwise. mapto records the point correspondence in both directions.
func (pl *Pipeline) MapSurfaceMesh(m *mesh.Mesh, dst brep.Face, mapto map[mapKey]mesh.PointIndex) error {
	g := pl.Geometry
	src := dst.Info().Primary.(brep.Face)
	trafo := dst.Info().PrimaryToMe
	log.Printf("meshing: map face %d -> %d", src.Info().Nr+1, dst.Info().Nr+1)

	np := m.NP()
	pmap := make([]mesh.PointIndex, np)
	for i := range pmap {
		pmap[i] = mesh.Invalid
	}

	// index the src boundary points at their expected dst positions
	isPointInTree := make([]bool, np)
	tree := NewPointTree(g.BoundingBox)
	for _, seg := range pl.boundarySegments(src, m) {
		for i := 0; i < 2; i++ {
			pi := seg.P[i]
			if isPointInTree[pi] {
				continue
			}
			p := m.Point(pi).Vec
			if trafo != nil {
				p = trafo.Apply(p)
			} else {
				for _, edge := range dst.Edges() {
					if edge.Info().Primary.Info().Nr != seg.EdgeNr-1 {
						continue
					}
					if m.Point(pi).Type == mesh.FixedPoint {
						if dist2(edge.StartVertex().Point(), p) > dist2(edge.EndVertex().Point(), p) {
							p = edge.EndVertex().Point()
						} else {
							p = edge.StartVertex().Point()
						}
					} else {
						p, _ = edge.ProjectPoint(p)
					}
				}
			}
			tree.Insert(p, pi, -1)
			isPointInTree[pi] = true
		}
	}

	// match the dst boundary points against the tree and collect their
	// parametric values; internal edges can carry several (u,v) pairs for
	// the same point
	uvValues := make([][]r2.Vec, np)
	for _, seg := range pl.boundarySegments(dst, m) {
		for i := 0; i < 2; i++ {
			pi := seg.P[i]
			if pmap[pi] == mesh.Invalid {
				piSrc, err := tree.Find(m.Point(pi).Vec, -1)
				if err != nil {
					return fmt.Errorf("meshing: mapping boundary of face %d: %w", dst.Info().Nr+1, err)
				}
				pmap[piSrc] = pi
			}
			seguv := r2.Vec{X: seg.GeomInfo[i].U, Y: seg.GeomInfo[i].V}
			found := false
			for _, uv := range uvValues[pi] {
				if d2.EqualWithin(uv, seguv, 1e-4) {
					found = true
				}
			}
			if !found {
				uvValues[pi] = append(uvValues[pi], seguv)
			}
		}
	}

	doInvert := invertMaybe
	if trafo == nil {
		doInvert = invertYes
	}

	els := m.SurfaceElements()
	nse := m.NSE()
	for sei := 0; sei < nse; sei++ {
		sel := els[sei]
		if sel.Index() != src.Info().Nr+1 {
			continue
		}

		selNew := mesh.NewElement2d(sel.NP())
		copy(selNew.PNums, sel.PNums)
		copy(selNew.GeomInfo, sel.GeomInfo)
		selNew.SetIndex(dst.Info().Nr + 1)
		for i, pi := range sel.PNums {
			if pmap[pi] == mesh.Invalid {
				p := m.Point(pi).Vec
				if trafo != nil {
					p = trafo.Apply(p)
				} else {
					p = dst.ProjectPoint(p)
				}
				pmap[pi] = m.AddPoint(p, 1, mesh.SurfacePoint)
			}
			selNew.PNums[i] = pmap[pi]
			mapto[mapKey{pi, dst.Info().Nr}] = pmap[pi]
			mapto[mapKey{pmap[pi], src.Info().Nr}] = pi
		}

		if doInvert == invertMaybe {
			nSrc := src.GetNormal(m.Point(sel.PNums[0]).Vec)
			nDst := dst.GetNormal(m.Point(selNew.PNums[0]).Vec)
			if r3.Dot(trafo.ApplyNormal(nSrc), nDst) < 0 {
				doInvert = invertYes
			} else {
				doInvert = invertNo
			}
		}
		if doInvert == invertYes {
			selNew.Invert()
		}

		for i := range selNew.PNums {
			pi := selNew.PNums[i]
			if int(pi) >= np {
				// freshly added inner surface point
				uv := dst.Project(m.Point(pi).Vec)
				selNew.GeomInfo[i] = mesh.PointGeomInfo{U: uv.X, V: uv.Y, TrigNum: dst.Info().Nr + 1}
				continue
			}
			uvs := uvValues[pi]
			switch {
			case len(uvs) == 1:
				selNew.GeomInfo[i] = mesh.PointGeomInfo{U: uvs[0].X, V: uvs[0].Y, TrigNum: dst.Info().Nr + 1}
			case len(uvs) > 1:
				// displace towards the element centroid, project, and pick
				// the closest stored parametric value
				const eps = 1e-3
				p := r3.Add(r3.Scale(1-eps, m.Point(selNew.PNumMod(i+1)).Vec),
					r3.Add(r3.Scale(eps/2, m.Point(selNew.PNumMod(i+2)).Vec),
						r3.Scale(eps/2, m.Point(selNew.PNumMod(i+3)).Vec)))
				uvP := dst.Project(p)
				best := uvs[0]
				minDist := (uvP.X-best.X)*(uvP.X-best.X) + (uvP.Y-best.Y)*(uvP.Y-best.Y)
				for _, uv := range uvs[1:] {
					d := (uvP.X-uv.X)*(uvP.X-uv.X) + (uvP.Y-uv.Y)*(uvP.Y-uv.Y)
					if d < minDist {
						minDist = d
						best = uv
					}
				}
				selNew.GeomInfo[i] = mesh.PointGeomInfo{U: best.X, V: best.Y, TrigNum: dst.Info().Nr + 1}
			default:
				return fmt.Errorf("meshing: mapped point %d of face %d has no parametric data", pi, dst.Info().Nr+1)
			}
		}
		m.AddSurfaceElement(selNew)
	}
	return nil
}

// OptimizeSurface runs the configured optimization step sequence over all
// face descriptors. Without an optimizer factory it is a no-op.
func (pl *Pipeline) OptimizeSurface(m *mesh.Mesh, mp *Parameters) {
	if pl.NewOptimizer == nil {
		return
	}
	obs := pl.observer()
	obs.SetTask("Optimize surface")

	opt := pl.NewOptimizer(m)
	for i := 0; i < mp.OptSteps2d; i++ {
		for k := 0; k < m.NFD(); k++ {
			opt.SetFaceIndex(k + 1)
			opt.SetMetricWeight(mp.ElSizeWeight)
			for inner, step := range mp.Optimize2d {
				obs.SetPercent(100 * (float64(inner)/float64(len(mp.Optimize2d)) + float64(i)) / float64(mp.OptSteps2d))
				switch step {
				case 's':
					opt.EdgeSwapping(0)
				case 'S':
					opt.EdgeSwapping(1)
				case 'm':
					opt.ImproveMesh(mp)
				case 'c':
					opt.CombineImprove()
				}
			}
		}
	}
	m.CalcSurfacesOfNode()
}
