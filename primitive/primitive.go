// Package primitive is a small analytic CAD kernel: points, line and arc
// edges, planar faces and box solids implementing the shape evaluation
// interfaces of package brep. It exists so geometries can be built and
// meshed without an external CAD engine.
package primitive

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep"
)

// Vertex is a point shape.
type Vertex struct {
	info brep.ShapeInfo
	P    r3.Vec
}

var _ brep.Vertex = (*Vertex)(nil)

// NewVertex returns a vertex at p.
func NewVertex(p r3.Vec) *Vertex {
	return &Vertex{P: p}
}

func (v *Vertex) Info() *brep.ShapeInfo { return &v.info }
func (v *Vertex) Kind() brep.Kind       { return brep.KindVertex }
func (v *Vertex) Center() r3.Vec        { return v.P }
func (v *Vertex) Point() r3.Vec         { return v.P }

// Solid groups faces into a volume for domain naming.
type Solid struct {
	info  brep.ShapeInfo
	faces []brep.Face
}

var _ brep.Solid = (*Solid)(nil)

// NewSolid returns a solid bounded by the given faces.
func NewSolid(name string, faces ...brep.Face) *Solid {
	s := &Solid{faces: faces}
	s.info.Properties.Name = name
	return s
}

func (s *Solid) Info() *brep.ShapeInfo { return &s.info }
func (s *Solid) Kind() brep.Kind       { return brep.KindSolid }

func (s *Solid) Center() r3.Vec {
	var c r3.Vec
	for _, f := range s.faces {
		c = r3.Add(c, f.Center())
	}
	return r3.Scale(1/float64(len(s.faces)), c)
}

func (s *Solid) Faces() []brep.Face { return s.faces }

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
