package primitive

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
)

// Box builds the geometry of an axis aligned box spanning lo to hi. The
// face ordering is bottom, top, then the four sides counterclockwise
// starting at y=lo.Y; all face normals point outward. The returned
// geometry is ready for ProcessIdentifications.
func Box(name string, lo, hi r3.Vec) *brep.Geometry {
	g := boxGeometry(name, lo, hi)
	return g
}

// Plates builds a thin box of footprint dx by dy and thickness gap whose
// bottom and top faces are identified as close surfaces. The four side
// faces connect the identified pair and mesh as single quad ribbons.
func Plates(name string, dx, dy, gap float64) *brep.Geometry {
	g := boxGeometry(name, r3.Vec{}, r3.Vec{X: dx, Y: dy, Z: gap})
	bottom, top := g.Faces[0], g.Faces[1]
	trafo := brep.Translate(r3.Vec{Z: gap})
	bottom.Info().Identifications = append(bottom.Info().Identifications, brep.Identification{
		From:  bottom,
		To:    top,
		Trafo: &trafo,
		Kind:  brep.CloseSurfaces,
		Name:  name + ":gap",
	})
	return g
}

func boxGeometry(name string, lo, hi r3.Vec) *brep.Geometry {
	// bottom ring then top ring, counterclockwise seen from above
	corners := [8]r3.Vec{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	var verts [8]*Vertex
	for i, c := range corners {
		verts[i] = NewVertex(c)
	}

	edgeEnds := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0}, // bottom ring
		{4, 5}, {5, 6}, {6, 7}, {7, 4}, // top ring
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // verticals
	}
	var edges [12]*LineEdge
	for i, ee := range edgeEnds {
		edges[i] = NewLineEdge(verts[ee[0]], verts[ee[1]])
	}

	// corner loops are counterclockwise around the outward normal
	faceCorners := [6][4]int{
		{0, 3, 2, 1}, // bottom, -z
		{4, 5, 6, 7}, // top, +z
		{0, 1, 5, 4}, // side y=lo.Y, -y
		{1, 2, 6, 5}, // side x=hi.X, +x
		{2, 3, 7, 6}, // side y=hi.Y, +y
		{3, 0, 4, 7}, // side x=lo.X, -x
	}
	faceEdges := [6][4]int{
		{3, 2, 1, 0},
		{4, 5, 6, 7},
		{0, 9, 4, 8},
		{1, 10, 5, 9},
		{2, 11, 6, 10},
		{3, 8, 7, 11},
	}
	faceNames := [6]string{"bottom", "top", "front", "right", "back", "left"}

	// the face traversing an edge forward encloses it as its in domain
	edgeDoms := [12][2]int{
		{2, 0}, {3, 0}, {4, 0}, {5, 0},
		{1, 2}, {1, 3}, {1, 4}, {1, 5},
		{5, 2}, {2, 3}, {3, 4}, {4, 5},
	}
	for i, d := range edgeDoms {
		edges[i].DomIn, edges[i].DomOut = d[0], d[1]
	}

	faces := make([]brep.Face, 6)
	for i := range faces {
		c := faceCorners[i]
		origin := corners[c[0]]
		du := r3.Sub(corners[c[1]], origin)
		dv := r3.Sub(corners[c[3]], origin)
		var be [4]brep.Edge
		for j, ei := range faceEdges[i] {
			be[j] = edges[ei]
		}
		f := NewPlanarFace(origin, du, dv, be[:]...)
		f.Info().Properties.Name = name + ":" + faceNames[i]
		faces[i] = f
	}

	solid := NewSolid(name, faces...)

	g := &brep.Geometry{
		Solids:    []brep.Solid{solid},
		Faces:     faces,
		Dimension: 3,
		BoundingBox: r3.Box{
			Min: lo,
			Max: hi,
		},
	}
	for _, e := range edges {
		g.Edges = append(g.Edges, e)
	}
	for _, v := range verts {
		g.Vertices = append(g.Vertices, v)
	}
	return g
}
