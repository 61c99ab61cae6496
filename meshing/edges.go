package meshing

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
	"github.com/soypat/brep/mesh"
)

func meshIdentType(k brep.IdentificationKind) mesh.IdentificationType {
	switch k {
	case brep.Periodic:
		return mesh.IdentPeriodic
	case brep.CloseSurfaces:
		return mesh.IdentCloseSurfaces
	}
	return mesh.IdentUndefined
}

// DivideEdge splits e into segments of locally requested mesh size,
// returning the interior points and the full parameter sequence including
// both endpoints. An explicit partition on the edge overrides the
// adaptive division.
func DivideEdge(e brep.Edge, mp *Parameters, m *mesh.Mesh) (points []r3.Vec, params []float64) {
	if part := e.Info().Properties.Partition; len(part) > 0 {
		points = make([]r3.Vec, len(part))
		params = make([]float64, len(part)+2)
		params[len(params)-1] = 1
		for i, t := range part {
			params[i+1] = t
			points[i] = e.GetPoint(t)
		}
		return points, params
	}

	layer := e.Info().Properties.Layer
	safety := 0.5 * (1 - mp.Grading)

	// sample the edge with steps proportional to the local mesh size,
	// accumulating the size weighted arc length
	lam := 0.0
	oldP := e.GetPoint(0)
	hvalue := []float64{0}
	var fineParams []float64
	for lam < 1 && len(hvalue) < 20000 {
		fineParams = append(fineParams, lam)
		h := m.GetH(oldP, layer)
		lam += safety * h / r3.Norm(e.GetTangent(lam))
		lam = math.Min(lam, 1)
		p := e.GetPoint(lam)
		hvalue = append(hvalue, hvalue[len(hvalue)-1]+r3.Norm(r3.Sub(p, oldP))/h)
		oldP = p
	}
	fineParams = append(fineParams, 1)

	stalled := len(hvalue) == 20000 && lam < 1
	if stalled {
		log.Printf("meshing: could not divide edge %q, truncating", e.Info().Properties.GetName())
	}

	nsub := 1
	if n := int(math.Floor(hvalue[len(hvalue)-1] + 0.5)); n > 1 {
		nsub = n
	}
	points = make([]r3.Vec, nsub-1)
	params = make([]float64, nsub+1)

	// invert the accumulated size integral at equidistant targets
	i1 := 0
	for i := 1; i < nsub; i++ {
		hTarget := float64(i) * hvalue[len(hvalue)-1] / float64(nsub)
		for i1 < len(hvalue) && hvalue[i1] < hTarget {
			i1++
		}
		if i1 == len(hvalue) {
			points = points[:i-1]
			params = params[:i+1]
			log.Printf("meshing: divide edge: local h too small")
			break
		}
		lam0, lam1 := fineParams[i1-1], fineParams[i1]
		h0, h1 := hvalue[i1-1], hvalue[i1]
		fac := (hTarget - h0) / (h1 - h0)
		params[i] = lam0 + fac*(lam1-lam0)
		points[i-1] = e.GetPoint(params[i])
	}

	params[0] = 0
	params[len(params)-1] = 1

	// a stalled march drops its last interior point
	if stalled && len(params) > 2 {
		points = points[:len(points)-1]
		params = append(params[:len(params)-2], 1)
	}

	if n := len(params); n >= 2 && params[n-1] <= params[n-2] {
		log.Printf("meshing: corrected degenerate tail segment on edge %q", e.Info().Properties.GetName())
		points = points[:len(points)-1]
		params = params[:n-1]
		params[n-2] = 1
	}
	return points, params
}

// FindEdges meshes the geometry vertices and edges: fixed points with 0d
// elements, divided edge segments, and the transfer of the geometry edge
// identifications onto the generated mesh points.
func (pl *Pipeline) FindEdges(m *mesh.Mesh, mp *Parameters) error {
	g := pl.Geometry
	obs := pl.observer()
	obs.SetTask("Mesh edges")

	tree := NewPointTree(g.BoundingBox)
	identifications := m.Identifications()

	vert2meshpt := make([]mesh.PointIndex, len(g.Vertices))
	for i := range vert2meshpt {
		vert2meshpt[i] = mesh.Invalid
	}

	for _, vert := range g.Vertices {
		info := vert.Info()
		pi := m.AddPoint(vert.Point(), info.Properties.Layer, mesh.FixedPoint)
		vert2meshpt[info.Nr] = pi
		m.Point(pi).Singular = info.Properties.Hpref

		el := mesh.PointElement{PNum: pi, Index: int(pi) + 1, Name: info.Properties.GetName()}
		m.SetCD3Name(int(pi)+1, el.Name)
		m.AddPointElement(el)
	}

	for _, vert := range g.Vertices {
		for _, ident := range vert.Info().Identifications {
			identifications.Add(vert2meshpt[ident.From.Info().Nr],
				vert2meshpt[ident.To.Info().Nr],
				ident.Name, meshIdentType(ident.Kind))
		}
	}

	tol := g.Tolerance()
	allPnums := make([][]mesh.PointIndex, len(g.Edges))

	for edgenr, edge := range g.Edges {
		obs.SetPercent(100 * float64(edgenr) / float64(len(g.Edges)))
		if obs.Cancelled() {
			return nil
		}
		info := edge.Info()
		startp := vert2meshpt[edge.StartVertex().Info().Nr]
		endp := vert2meshpt[edge.EndVertex().Info().Nr]

		// ignore collapsed edges
		if edge.IsDegenerated(tol) {
			continue
		}

		var edgePoints []r3.Vec
		var params []float64

		if info.Primary == brep.Shape(edge) {
			// an edge whose endpoints are identified as close surfaces gets a
			// single segment; refinement happens later between the surfaces
			isIdentifiedEdge := false
			v0, v1 := edge.StartVertex(), edge.EndVertex()
			for _, ident := range v0.Info().Identifications {
				other := ident.From
				if ident.From == brep.Shape(v0) {
					other = ident.To
				}
				if other.Info().Nr == v1.Info().Nr && ident.Kind == brep.CloseSurfaces {
					isIdentifiedEdge = true
					break
				}
			}

			if isIdentifiedEdge {
				params = []float64{0, 1}
			} else {
				edgePoints, params = DivideEdge(edge, mp, m)
			}
		} else {
			// inherit the division of the primary edge
			primaryNr := info.Primary.Info().Nr
			pnumsPrimary := allPnums[primaryNr]
			trafo := info.PrimaryToMe

			np := len(pnumsPrimary)
			edgePoints = make([]r3.Vec, np-2)
			edgeParams := make([]float64, np-2)
			for i := 0; i < np-2; i++ {
				p := m.Point(pnumsPrimary[i+1]).Vec
				if trafo != nil {
					p = trafo.Apply(p)
				}
				proj, t := edge.ProjectPoint(p)
				edgePoints[i] = proj
				edgeParams[i] = t
			}

			params = make([]float64, len(edgeParams)+2)
			copy(params[1:], edgeParams)

			if len(edgeParams) > 1 {
				// projection alone cannot orient closed edges; two interior
				// points are enough to decide
				if reversed := edgeParams[1] < edgeParams[0]; reversed {
					params[0] = 1
					params[len(params)-1] = 0
				} else {
					params[0] = 0
					params[len(params)-1] = 1
				}
			} else {
				for _, i := range []int{0, np - 1} {
					p := m.Point(pnumsPrimary[i]).Vec
					if trafo != nil {
						p = trafo.Apply(p)
					}
					_, t := edge.ProjectPoint(p)
					if i == 0 {
						params[0] = t
					} else {
						params[len(params)-1] = t
					}
				}
			}
		}

		pnums := make([]mesh.PointIndex, len(edgePoints)+2)
		isReversed := params[len(params)-1] < params[0]
		if isReversed {
			pnums[0], pnums[len(pnums)-1] = endp, startp
		} else {
			pnums[0], pnums[len(pnums)-1] = startp, endp
		}

		for i, p := range edgePoints {
			pi := m.AddPoint(p, info.Properties.Layer, mesh.EdgePoint)
			if len(info.Identifications) > 0 {
				tree.Insert(p, pi, info.Nr)
			}
			pnums[i+1] = pi
		}

		in, out := edge.Domains()
		for i := 0; i+1 < len(pnums); i++ {
			var seg mesh.Segment
			seg.P[0] = pnums[i]
			seg.P[1] = pnums[i+1]
			seg.EdgeNr = edgenr + 1
			seg.SI = edgenr + 1
			seg.GeomInfo[0].Dist = params[i]
			seg.GeomInfo[1].Dist = params[i+1]
			seg.GeomInfo[0].EdgeNr = edgenr
			seg.GeomInfo[1].EdgeNr = edgenr
			seg.SingEdgeLeft = info.Properties.Hpref
			seg.SingEdgeRight = info.Properties.Hpref
			seg.DomIn = in + 1
			seg.DomOut = out + 1
			m.AddSegment(seg)
		}
		m.SetCD2Name(edgenr+1, info.Properties.GetName())
		allPnums[edgenr] = pnums
	}

	// identify interior points on identified edges; endpoints are already
	// identified through their vertices
	for _, edge := range g.Edges {
		for _, ident := range edge.Info().Identifications {
			if ident.From != brep.Shape(edge) {
				continue
			}
			pnums := allPnums[edge.Info().Nr]
			if len(pnums) < 2 {
				continue
			}
			for _, pi := range pnums[1 : len(pnums)-1] {
				pOther := m.Point(pi).Vec
				if ident.Trafo != nil {
					pOther = ident.Trafo.Apply(pOther)
				} else {
					pOther, _ = ident.To.(brep.Edge).ProjectPoint(pOther)
				}
				piOther, err := tree.Find(pOther, ident.To.Info().Nr)
				if err != nil {
					return fmt.Errorf("meshing: transferring identification %q: %w", ident.Name, err)
				}
				identifications.Add(pi, piOther, ident.Name, meshIdentType(ident.Kind))
			}
		}
	}

	m.CalcSurfacesOfNode()
	return nil
}
