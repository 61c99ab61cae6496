// Package render exports generated surface meshes to triangle soup
// formats, STL in particular, and reads them back for visualization and
// testing.
package render

import (
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep/mesh"
)

// Triangle3 is a 3d triangle.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the normal vector to the plane defined by the triangle.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Degenerate returns true if the triangle has two identical vertices
// within tol.
func (t Triangle3) Degenerate(tol float64) bool {
	equal := func(a, b r3.Vec) bool {
		d := r3.Sub(a, b)
		return d.X <= tol && d.X >= -tol && d.Y <= tol && d.Y >= -tol && d.Z <= tol && d.Z >= -tol
	}
	return equal(t.V[0], t.V[1]) || equal(t.V[1], t.V[2]) || equal(t.V[2], t.V[0])
}

// Renderer is a triangle stream. ReadTriangles returns io.EOF when the
// stream is exhausted, following the io.Reader convention.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

// meshRenderer streams the surface elements of a mesh as triangles,
// splitting quads along their first diagonal.
type meshRenderer struct {
	m    *mesh.Mesh
	elem int
	// pending second half of a split quad
	pending *Triangle3
}

// NewMeshRenderer returns a Renderer over the surface elements of m.
func NewMeshRenderer(m *mesh.Mesh) Renderer {
	return &meshRenderer{m: m}
}

func (mr *meshRenderer) ReadTriangles(t []Triangle3) (int, error) {
	n := 0
	for n < len(t) {
		if mr.pending != nil {
			t[n] = *mr.pending
			mr.pending = nil
			n++
			continue
		}
		if mr.elem >= mr.m.NSE() {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		el := mr.m.SurfaceElements()[mr.elem]
		mr.elem++
		p := func(i int) r3.Vec { return mr.m.Point(el.PNums[i]).Vec }
		switch el.NP() {
		case 3:
			t[n] = Triangle3{V: [3]r3.Vec{p(0), p(1), p(2)}}
			n++
		case 4:
			t[n] = Triangle3{V: [3]r3.Vec{p(0), p(1), p(2)}}
			n++
			mr.pending = &Triangle3{V: [3]r3.Vec{p(0), p(2), p(3)}}
		}
	}
	return n, nil
}

// RenderAll reads the full contents of a Renderer and returns the slice
// read. It does not return error on io.EOF.
func RenderAll(r Renderer) ([]Triangle3, error) {
	var err error
	var nt int
	result := make([]Triangle3, 0, 1<<12)
	buf := make([]Triangle3, 1024)
	for {
		nt, err = r.ReadTriangles(buf)
		result = append(result, buf[:nt]...)
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}
