package meshing

import (
	"log"
	"math"

	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
	"github.com/soypat/brep/mesh"
)

// Analyse builds the mesh size field: the global cap and floor, per edge
// length and curvature restrictions, per face curvature restrictions, the
// optional close edge detection and the user supplied size points.
func (pl *Pipeline) Analyse(m *mesh.Mesh, mp *Parameters) error {
	g := pl.Geometry
	obs := pl.observer()

	m.SetGlobalH(mp.MaxH)
	m.SetMinimalH(mp.MinH)
	m.SetLocalH(g.BoundingBox.Min, g.BoundingBox.Max, mp.Grading)

	// only set mesh size for edges longer than this
	mincurvelength := 1e-3 * g.Diam()

	if mp.UseLocalH {
		eps := 1e-10 * g.Diam()
		obs.SetTask("Analyse edges")

		for i, edge := range g.Edges {
			obs.SetPercent(100 * float64(i) / float64(len(g.Edges)))
			if obs.Cancelled() {
				return nil
			}
			length := edge.Length()
			if length < mincurvelength {
				continue
			}
			const npts = 20
			for j := 0; j <= npts; j++ {
				m.RestrictLocalH(edge.GetPoint(float64(j)/npts), length/mp.SegmentsPerEdge, 1)
			}

			// walk the edge in curvature bounded steps
			t := 0.0
			pOld := edge.GetPoint(t)
			for t < 1-eps {
				t += edge.CalcStep(t, 1/mp.CurvatureSafety)
				if t < 1 {
					p := edge.GetPoint(t)
					m.RestrictLocalH(p, r3.Norm(r3.Sub(p, pOld)), 1)
					pOld = p
				}
			}
		}

		obs.SetTask("Analyse faces")
		for i, face := range g.Faces {
			obs.SetPercent(100 * float64(i) / float64(len(g.Faces)))
			if obs.Cancelled() {
				return nil
			}
			if hr, ok := face.(HRestrictor); ok {
				hr.RestrictH(m, mp)
				continue
			}
			restrictHTrig(face, m, mp, r2.Vec{}, r2.Vec{X: 1}, r2.Vec{X: 1, Y: 1}, 0, mp.MaxH)
			restrictHTrig(face, m, mp, r2.Vec{}, r2.Vec{X: 1, Y: 1}, r2.Vec{Y: 1}, 0, mp.MaxH)
		}

		if mp.CloseEdgeFac != nil {
			obs.SetTask("Analyse close edges")
			if err := pl.analyseCloseEdges(m, mp, eps); err != nil {
				return err
			}
		}
	}

	for _, msp := range mp.MeshSizePoints {
		m.RestrictLocalH(msp.Point, msp.H, msp.Layer)
	}

	return m.LoadLocalMeshSize(mp.MeshSizeFilename)
}

// restrictHTrig recursively splits the parametric triangle along its
// longest world space edge until the curvature demanded mesh size covers
// it, then restricts the size field at its corners and centroid.
func restrictHTrig(f brep.Face, m *mesh.Mesh, mp *Parameters, gi0, gi1, gi2 r2.Vec, depth int, h float64) {
	p0 := f.GetPoint(gi0)
	p1 := f.GetPoint(gi1)
	p2 := f.GetPoint(gi2)
	longest := r3.Norm(r3.Sub(p0, p1))
	cutedge := 2
	if l := r3.Norm(r3.Sub(p0, p2)); l > longest {
		longest = l
		cutedge = 1
	}
	if l := r3.Norm(r3.Sub(p1, p2)); l > longest {
		longest = l
		cutedge = 0
	}
	giMid := r2.Scale(1.0/3.0, r2.Add(gi0, r2.Add(gi1, gi2)))

	if depth%3 == 0 {
		curvature := 0.0
		for _, gi := range []r2.Vec{giMid, gi0, gi1, gi2} {
			curvature = math.Max(curvature, f.GetCurvature(gi))
		}
		if curvature < 1e-3 {
			return
		}
		kappa := curvature * mp.CurvatureSafety
		if mp.MaxH*kappa < 1 {
			h = mp.MaxH
		} else {
			h = 1 / kappa
		}
		if h < 1e-4*longest {
			return
		}
	}

	if h < longest && depth < 10 {
		switch cutedge {
		case 0:
			giM := r2.Scale(0.5, r2.Add(gi1, gi2))
			restrictHTrig(f, m, mp, giM, gi2, gi0, depth+1, h)
			restrictHTrig(f, m, mp, giM, gi0, gi1, depth+1, h)
		case 1:
			giM := r2.Scale(0.5, r2.Add(gi0, gi2))
			restrictHTrig(f, m, mp, giM, gi1, gi2, depth+1, h)
			restrictHTrig(f, m, mp, giM, gi0, gi1, depth+1, h)
		case 2:
			giM := r2.Scale(0.5, r2.Add(gi0, gi1))
			restrictHTrig(f, m, mp, giM, gi1, gi2, depth+1, h)
			restrictHTrig(f, m, mp, giM, gi2, gi0, depth+1, h)
		}
	} else {
		pmid := f.GetPoint(giMid)
		for _, p := range []r3.Vec{p0, p1, p2, pmid} {
			m.RestrictLocalH(p, h, 1)
		}
	}
}

type edgeLine struct {
	p0, p1 r3.Vec
}

func (l edgeLine) length() float64 { return r3.Norm(r3.Sub(l.p1, l.p0)) }

// dist returns the distance from the midpoint of l to the point where the
// plane through that midpoint, normal to l, cuts other, or 1e99 when that
// point lies outside other.
func (l edgeLine) dist(other edgeLine) float64 {
	n := r3.Sub(l.p1, l.p0)
	q := r3.Sub(other.p1, other.p0)
	nq := r3.Dot(n, q)
	p := r3.Add(l.p0, r3.Scale(0.5, n))
	lambda := r3.Dot(r3.Sub(p, other.p0), n) / (nq + 1e-10)
	if lambda >= 0 && lambda <= 1 {
		return r3.Norm(r3.Sub(r3.Sub(p, other.p0), r3.Scale(lambda, q)))
	}
	return 1e99
}

type lineEntry struct {
	rect  *rtreego.Rect
	index int
}

func (e *lineEntry) Bounds() *rtreego.Rect { return e.rect }

// segmentRect returns the axis aligned box of the segment p0-p1, enlarged
// by grow on all sides. A minimal extent keeps degenerate boxes valid.
func segmentRect(p0, p1 r3.Vec, grow float64) *rtreego.Rect {
	lo := r3.Vec{X: math.Min(p0.X, p1.X), Y: math.Min(p0.Y, p1.Y), Z: math.Min(p0.Z, p1.Z)}
	hi := r3.Vec{X: math.Max(p0.X, p1.X), Y: math.Max(p0.Y, p1.Y), Z: math.Max(p0.Z, p1.Z)}
	grow = math.Max(grow, 1e-12)
	lengths := []float64{
		hi.X - lo.X + 2*grow,
		hi.Y - lo.Y + 2*grow,
		hi.Z - lo.Z + 2*grow,
	}
	r, err := rtreego.NewRect(rtreego.Point{lo.X - grow, lo.Y - grow, lo.Z - grow}, lengths)
	if err != nil {
		panic(err)
	}
	return r
}

// analyseCloseEdges cuts every edge into near straight sections, indexes
// them spatially and restricts the mesh size along sections that pass
// close to a section of an unrelated edge.
func (pl *Pipeline) analyseCloseEdges(m *mesh.Mesh, mp *Parameters, eps float64) error {
	g := pl.Geometry
	obs := pl.observer()
	const sections = 100
	cosCut := math.Cos(10. / 180 * math.Pi)

	var lines []edgeLine
	rt := rtreego.NewTree(3, 2, 25)
	for _, edge := range g.Edges {
		if edge.Length() < eps {
			continue
		}
		pOld := edge.GetPoint(0)
		tOld := r3.Unit(edge.GetTangent(0))
		for i := 1; i <= sections; i++ {
			t := float64(i) / sections
			pNew := edge.GetPoint(t)
			tNew := r3.Unit(edge.GetTangent(t))
			cosalpha := math.Abs(r3.Dot(tOld, tNew))
			if i == sections || cosalpha < cosCut {
				l := edgeLine{p0: pOld, p1: pNew}
				rt.Insert(&lineEntry{rect: segmentRect(pOld, pNew, 0), index: len(lines)})
				lines = append(lines, l)
				pOld = pNew
				tOld = tNew
			}
		}
	}

	for i, line := range lines {
		if line.length() < eps {
			continue
		}
		obs.SetPercent(100 * float64(i) / float64(len(lines)))
		if obs.Cancelled() {
			return nil
		}
		mindist := 1e99
		for _, sp := range rt.SearchIntersect(segmentRect(line.p0, line.p1, line.length())) {
			num := sp.(*lineEntry).index
			if num == i {
				continue
			}
			other := lines[num]
			if dist2(line.p0, other.p0) < eps || dist2(line.p0, other.p1) < eps ||
				dist2(line.p1, other.p0) < eps || dist2(line.p1, other.p1) < eps {
				continue
			}
			mindist = math.Min(mindist, line.dist(other))
		}
		if mindist == 1e99 {
			continue
		}
		mindist /= *mp.CloseEdgeFac + 1e-10
		if mindist < 1e-3*g.Diam() {
			log.Printf("meshing: extremely small local h %g near %v - %v, clipping to %g",
				mindist, line.p0, line.p1, 1e-3*g.Diam())
			mindist = 1e-3 * g.Diam()
		}
		m.RestrictLocalHLine(line.p0, line.p1, mindist, 1)
	}
	return nil
}

func dist2(a, b r3.Vec) float64 {
	d := r3.Sub(a, b)
	return r3.Dot(d, d)
}
