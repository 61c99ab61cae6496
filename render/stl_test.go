package render

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep/internal/d3"
	"github.com/soypat/brep/mesh"
)

func triNear(t *testing.T, got, want Triangle3) {
	t.Helper()
	for i := range want.V {
		if !d3.EqualWithin(got.V[i], want.V[i], 1e-6) {
			t.Errorf("vertex %d: got %v, want %v", i, got.V[i], want.V[i])
		}
	}
}

func testTriangles() []Triangle3 {
	return []Triangle3{
		{V: [3]r3.Vec{{}, {X: 1}, {Y: 1}}},
		{V: [3]r3.Vec{{X: 1}, {X: 1, Y: 1}, {Y: 1}}},
		{V: [3]r3.Vec{{Z: 0.5}, {X: 1, Z: 0.5}, {Y: 1, Z: 0.5}}},
	}
}

func TestSTLWriteRead(t *testing.T) {
	model := testTriangles()
	var buf bytes.Buffer
	if err := WriteSTL(&buf, model); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 84+50*len(model) {
		t.Errorf("stream length %d", buf.Len())
	}
	back, err := ReadSTL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != len(model) {
		t.Fatalf("got %d triangles, want %d", len(back), len(model))
	}
	for i := range model {
		triNear(t, back[i], model[i])
	}
}

func TestSTLEmptyModel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, nil); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestReadSTLNormalMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, testTriangles()); err != nil {
		t.Fatal(err)
	}
	// corrupt the stored normal of the first triangle
	b := buf.Bytes()
	put3F32(b[84:], [3]float32{1, 0, 0})

	back, err := ReadSTL(bytes.NewReader(b))
	if !errors.Is(err, ErrNormalMismatch) {
		t.Fatalf("got error %v, want ErrNormalMismatch", err)
	}
	// the model is returned regardless
	if len(back) != 3 {
		t.Errorf("got %d triangles, want 3", len(back))
	}
}

type sliceRenderer struct {
	tris []Triangle3
}

func (sr *sliceRenderer) ReadTriangles(t []Triangle3) (int, error) {
	if len(sr.tris) == 0 {
		return 0, io.EOF
	}
	n := copy(t, sr.tris)
	sr.tris = sr.tris[n:]
	return n, nil
}

func TestCreateSTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tris.stl")
	if err := CreateSTL(path, &sliceRenderer{tris: testTriangles()}); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	back, err := ReadSTL(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 3 {
		t.Fatalf("got %d triangles, want 3", len(back))
	}
}

func TestMeshRenderer(t *testing.T) {
	var m mesh.Mesh
	pts := []r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}, {Z: 1}}
	for _, p := range pts {
		m.AddPoint(p, 1, mesh.SurfacePoint)
	}
	quad := mesh.NewElement2d(4)
	quad.PNums = []mesh.PointIndex{0, 1, 2, 3}
	m.AddSurfaceElement(quad)
	tri := mesh.NewElement2d(3)
	tri.PNums = []mesh.PointIndex{0, 1, 4}
	m.AddSurfaceElement(tri)

	tris, err := RenderAll(NewMeshRenderer(&m))
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) != 3 {
		t.Fatalf("got %d triangles, want 3", len(tris))
	}
	// the quad splits along its first diagonal
	triNear(t, tris[0], Triangle3{V: [3]r3.Vec{pts[0], pts[1], pts[2]}})
	triNear(t, tris[1], Triangle3{V: [3]r3.Vec{pts[0], pts[2], pts[3]}})
	triNear(t, tris[2], Triangle3{V: [3]r3.Vec{pts[0], pts[1], pts[4]}})

	if n := tris[0].Normal(); math.Abs(n.Z-1) > 1e-12 {
		t.Errorf("quad normal %v, want +z", n)
	}
}
