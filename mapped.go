package brep

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNotImplemented is reported when a shape class has no mapping
// predicate. Only vertices, edges and faces can be mapped.
var ErrNotImplemented = errors.New("brep: IsMappedShape not implemented for shape class")

func dist(a, b r3.Vec) float64 { return r3.Norm(r3.Sub(a, b)) }

// IsMappedShape reports whether trafo maps s onto other within the
// geometric tolerance tol. Shapes of different kinds never map onto each
// other. Calling it on solids panics with ErrNotImplemented.
func IsMappedShape(s, other Shape, trafo Transform, tol float64) bool {
	if s.Kind() != other.Kind() {
		return false
	}
	switch s.Kind() {
	case KindVertex:
		return isMappedVertex(s.(Vertex), other.(Vertex), trafo, tol)
	case KindEdge:
		return isMappedEdge(s.(Edge), other.(Edge), trafo, tol)
	case KindFace:
		return isMappedFace(s.(Face), other.(Face), trafo, tol)
	}
	panic(ErrNotImplemented)
}

func isMappedVertex(v, other Vertex, trafo Transform, tol float64) bool {
	return dist(trafo.Apply(v.Point()), other.Point()) < tol
}

func isMappedEdge(e, other Edge, trafo Transform, tol float64) bool {
	if e.IsDegenerated(tol) || other.IsDegenerated(tol) {
		return false
	}
	if tol < dist(trafo.Apply(e.Center()), other.Center()) {
		return false
	}

	v0 := trafo.Apply(e.StartVertex().Point())
	v1 := trafo.Apply(e.EndVertex().Point())
	w0 := other.StartVertex().Point()
	w1 := other.EndVertex().Point()

	// two closed edges, use midpoints to compare
	if dist(v0, v1) < tol && dist(w0, w1) < tol {
		v1 = trafo.Apply(e.GetPoint(0.5))
		w1 = other.GetPoint(0.5)
	}

	return (dist(v0, w0) < tol && dist(v1, w1) < tol) ||
		(dist(v0, w1) < tol && dist(v1, w0) < tol)
}

// isMappedFace checks the face centers and requires every edge of f to map
// onto exactly one edge of other. Known limitation: the count check does
// not force injectivity of the edge pairing.
func isMappedFace(f, other Face, trafo Transform, tol float64) bool {
	if tol < dist(trafo.Apply(f.Center()), other.Center()) {
		return false
	}

	edges := f.Edges()
	otherEdges := other.Edges()
	if len(edges) != len(otherEdges) {
		return false
	}

	for _, e := range edges {
		found := 0
		for _, eo := range otherEdges {
			if isMappedEdge(e, eo, trafo, tol) {
				found++
			}
		}
		if found != 1 {
			return false
		}
	}
	return true
}

// IsConnectingCloseSurfaces reports whether every boundary vertex of f
// pairs up with another boundary vertex of f under a CLOSESURFACES
// identification. Such faces are meshed as ribbons of connecting quads
// instead of being triangulated.
func IsConnectingCloseSurfaces(f Face) bool {
	verts := map[Shape]bool{}
	for _, e := range f.Edges() {
		verts[e.StartVertex()] = false
		verts[e.EndVertex()] = false
	}
	for v := range verts {
		if verts[v] {
			continue
		}
		for _, ident := range v.Info().Identifications {
			other := ident.To
			if ident.To == v {
				other = ident.From
			}
			if ident.Kind == CloseSurfaces {
				if _, ok := verts[other]; ok {
					verts[v] = true
					verts[other] = true
				}
			}
		}
	}
	for _, paired := range verts {
		if !paired {
			return false
		}
	}
	return true
}
