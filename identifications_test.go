package brep_test

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
	"github.com/soypat/brep/primitive"
)

func TestProcessIdentificationsPlates(t *testing.T) {
	const gap = 0.1
	g := primitive.Plates("p", 2, 2, gap)
	g.ProcessIdentifications()

	for i, f := range g.Faces {
		if f.Info().Nr != i {
			t.Errorf("face %d has Nr %d", i, f.Info().Nr)
		}
	}

	bottom, top := g.Faces[0], g.Faces[1]

	// the face identification is mirrored onto the top face
	var mirrored bool
	for _, id := range top.Info().Identifications {
		if id.From == bottom && id.To == top {
			mirrored = true
		}
	}
	if !mirrored {
		t.Error("face identification not mirrored")
	}

	// the identification descends to the four ring edge pairs
	for i := 0; i < 4; i++ {
		be, te := g.Edges[i], g.Edges[i+4]
		var found bool
		for _, id := range be.Info().Identifications {
			if id.To == te {
				found = true
			}
		}
		if !found {
			t.Errorf("ring edge %d not identified with its top copy", i)
		}
	}
	// vertical edges stay unidentified
	for i := 8; i < 12; i++ {
		if len(g.Edges[i].Info().Identifications) != 0 {
			t.Errorf("vertical edge %d gained identifications", i)
		}
	}

	// and further down to the vertex pairs
	for i := 0; i < 4; i++ {
		bv, tv := g.Vertices[i], g.Vertices[i+4]
		if tv.Info().Primary != bv {
			t.Errorf("vertex %d primary not the bottom vertex", i+4)
		}
		ptm := tv.Info().PrimaryToMe
		if ptm == nil {
			t.Fatalf("vertex %d has no primary transform", i+4)
		}
		got := ptm.Apply(bv.Center())
		if r3.Norm(r3.Sub(got, tv.Center())) > 1e-12 {
			t.Errorf("primary transform maps to %v, want %v", got, tv.Center())
		}
	}

	if top.Info().Primary != bottom {
		t.Error("top face primary must be the bottom face")
	}
	if bottom.Info().Primary != bottom {
		t.Error("bottom face must be its own primary")
	}
}

func TestIsConnectingCloseSurfaces(t *testing.T) {
	g := primitive.Plates("p", 2, 2, 0.1)
	g.ProcessIdentifications()

	if brep.IsConnectingCloseSurfaces(g.Faces[0]) {
		t.Error("bottom face is not a connector")
	}
	if brep.IsConnectingCloseSurfaces(g.Faces[1]) {
		t.Error("top face is not a connector")
	}
	for i := 2; i < 6; i++ {
		if !brep.IsConnectingCloseSurfaces(g.Faces[i]) {
			t.Errorf("side face %d must connect the close surfaces", i)
		}
	}
}

func TestIsMappedShape(t *testing.T) {
	g := primitive.Plates("p", 2, 2, 0.1)
	g.ProcessIdentifications()
	tol := g.Tolerance()

	up := brep.Translate(r3.Vec{Z: 0.1})
	if !brep.IsMappedShape(g.Faces[0], g.Faces[1], up, tol) {
		t.Error("bottom face must map onto the top face")
	}
	if brep.IsMappedShape(g.Faces[0], g.Faces[2], up, tol) {
		t.Error("bottom face must not map onto a side face")
	}
	if !brep.IsMappedShape(g.Vertices[0], g.Vertices[4], up, tol) {
		t.Error("bottom vertex must map onto its top copy")
	}
	if brep.IsMappedShape(g.Vertices[0], g.Faces[1], up, tol) {
		t.Error("shapes of different kind never map")
	}
}
