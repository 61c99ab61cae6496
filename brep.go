// Package brep models boundary-representation geometry as a four level
// incidence hierarchy of vertices, edges, faces and solids, together with
// shape identifications: declared pairings of shapes related by a rigid
// transformation. The meshing pipeline in package meshing consumes this
// model through the small per-shape evaluation interfaces defined here,
// so any CAD kernel able to evaluate points, tangents and projections can
// drive it.
package brep

import (
	"errors"
	"io"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind discriminates the four shape classes of the hierarchy.
type Kind int

const (
	KindVertex Kind = iota
	KindEdge
	KindFace
	KindSolid
)

func (k Kind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindEdge:
		return "edge"
	case KindFace:
		return "face"
	case KindSolid:
		return "solid"
	}
	return "shape"
}

// IdentificationKind classifies an identification record.
type IdentificationKind int

const (
	Undefined IdentificationKind = iota
	Periodic
	CloseSurfaces
)

// Identification declares that From maps onto To, optionally via the rigid
// transformation Trafo. A nil Trafo means the pairing is geometric only and
// consumers must project instead of transforming.
type Identification struct {
	From, To Shape
	Trafo    *Transform
	Kind     IdentificationKind
	Name     string
}

// Properties carries user-settable attributes shared by all shape classes.
type Properties struct {
	Layer int
	Name  string
	// Col is an optional RGBA surface colour.
	Col *[4]float64
	// Hpref marks the shape for boundary layer refinement.
	Hpref bool
	// Partition, when set on an edge, overrides the adaptive divider with a
	// fixed interior parameter sequence in (0,1).
	Partition []float64
}

// GetName returns the shape name, or "default" when unset.
func (p *Properties) GetName() string {
	if p.Name == "" {
		return "default"
	}
	return p.Name
}

// ShapeInfo is the mutable per-shape state shared by every shape class.
// CAD kernel shape types embed one ShapeInfo and return it from Info.
// The fields Nr, Primary and PrimaryToMe are written exclusively by
// Geometry.ProcessIdentifications; shapes are read only afterwards.
type ShapeInfo struct {
	// Nr is the dense index of the shape within its shape list.
	Nr int
	// Properties of the shape.
	Properties Properties
	// Identifications in which the shape takes part, closed under
	// mirroring after ProcessIdentifications.
	Identifications []Identification
	// Primary is the representative of the shape's identification
	// equivalence class, the class member with the smallest Nr.
	Primary Shape
	// PrimaryToMe maps points from Primary's frame into this shape's
	// frame. Nil when no transformation chain is known.
	PrimaryToMe *Transform
}

// Shape is the capability common to all four shape classes.
type Shape interface {
	Info() *ShapeInfo
	Kind() Kind
	Center() r3.Vec
}

// Vertex is a zero dimensional shape.
type Vertex interface {
	Shape
	Point() r3.Vec
}

// Edge is a curve parameterized over t in [0,1].
type Edge interface {
	Shape
	// GetPoint evaluates the curve at parameter t.
	GetPoint(t float64) r3.Vec
	// GetTangent evaluates the curve derivative dp/dt at parameter t.
	GetTangent(t float64) r3.Vec
	// CalcStep returns a parameter increment from t such that the chord
	// deviates from the curve by at most relerr relative error.
	CalcStep(t, relerr float64) float64
	// Length of the curve.
	Length() float64
	StartVertex() Vertex
	EndVertex() Vertex
	// IsDegenerated reports whether the edge is collapsed below tol.
	IsDegenerated(tol float64) bool
	// ProjectPoint projects p onto the curve, returning the projected
	// point and its parameter in [0,1].
	ProjectPoint(p r3.Vec) (r3.Vec, float64)
	// Domains returns the enclosing domain numbers left and right of the
	// edge for 1D meshes. Both are -1 for embedded edges.
	Domains() (in, out int)
}

// Face is a surface parameterized over (u,v).
type Face interface {
	Shape
	// GetPoint evaluates the surface at parametric coordinates uv.
	GetPoint(uv r2.Vec) r3.Vec
	// GetCurvature returns the maximal principal curvature at uv.
	GetCurvature(uv r2.Vec) float64
	// Project returns the parametric coordinates of the closest surface
	// point to p.
	Project(p r3.Vec) r2.Vec
	// ProjectPoint projects p onto the surface.
	ProjectPoint(p r3.Vec) r3.Vec
	// GetNormal returns the outward surface normal at the surface point p.
	GetNormal(p r3.Vec) r3.Vec
	// Edges returns the boundary edges of the face.
	Edges() []Edge
	Bounds() r3.Box
	// Domains returns the enclosing domain numbers in front of and behind
	// the face.
	Domains() (in, out int)
}

// Solid is a three dimensional shape bounded by faces.
type Solid interface {
	Shape
	Faces() []Face
}

// RestrictedH pins the local mesh size to H around Point.
type RestrictedH struct {
	Point r3.Vec
	H     float64
}

// Geometry is the shape container handed to the meshing pipeline.
type Geometry struct {
	Vertices []Vertex
	Edges    []Edge
	Faces    []Face
	Solids   []Solid

	// BoundingBox must enclose all shapes. It seeds the mesh size octree
	// and all point search trees.
	BoundingBox r3.Box

	// Dimension of the highest dimensional entity to mesh (1, 2 or 3).
	Dimension int

	// RestrictedH entries are applied as mesh size pin points before
	// meshing starts.
	RestrictedH []RestrictedH
}

// Clear removes all shapes from the geometry.
func (g *Geometry) Clear() {
	g.Vertices = g.Vertices[:0]
	g.Edges = g.Edges[:0]
	g.Faces = g.Faces[:0]
	g.Solids = g.Solids[:0]
}

// Diam returns the diagonal length of the geometry bounding box.
func (g *Geometry) Diam() float64 {
	return r3.Norm(r3.Sub(g.BoundingBox.Max, g.BoundingBox.Min))
}

// Tolerance returns the geometric equality tolerance used by shape
// mapping predicates and identification transfer.
func (g *Geometry) Tolerance() float64 {
	return 1e-8 * g.Diam()
}

// ErrSaveUnavailable is returned by Save when the geometry has no writer.
var ErrSaveUnavailable = errors.New("cannot save geometry: no writer available")

// Save writes the geometry to w. The base implementation has no writer.
func (g *Geometry) Save(w io.Writer) error {
	return ErrSaveUnavailable
}
