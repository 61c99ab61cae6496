package meshing

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/brep/mesh"
)

// ErrNotFound is reported by PointTree.Find when no stored point lies
// within tolerance of the query.
var ErrNotFound = errors.New("meshing: no point found within tolerance")

// PointTree indexes mesh points by position, partitioned by an integer
// tag (usually a geometry edge number, or -1 for untagged points).
// Lookups match the stored point closest to the query within the fixed
// tolerance derived from the bounding box at construction.
type PointTree struct {
	trees map[int]*kdtree.Tree
	tol2  float64
}

// NewPointTree returns an empty tree with tolerance 1e-8 times the
// diagonal of bbox.
func NewPointTree(bbox r3.Box) *PointTree {
	tol := 1e-8 * r3.Norm(r3.Sub(bbox.Max, bbox.Min))
	return &PointTree{
		trees: map[int]*kdtree.Tree{},
		tol2:  tol * tol,
	}
}

type treePoint struct {
	p  r3.Vec
	id mesh.PointIndex
}

var _ kdtree.Comparable = treePoint{}

func (a treePoint) coord(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return a.p.X
	case 1:
		return a.p.Y
	}
	return a.p.Z
}

func (a treePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return a.coord(d) - c.(treePoint).coord(d)
}

func (a treePoint) Dims() int { return 3 }

// Distance returns the squared euclidean distance, consistent with the
// kdtree contract.
func (a treePoint) Distance(c kdtree.Comparable) float64 {
	d := r3.Sub(a.p, c.(treePoint).p)
	return r3.Dot(d, d)
}

// Insert stores p under the given tag.
func (pt *PointTree) Insert(p r3.Vec, id mesh.PointIndex, tag int) {
	t, ok := pt.trees[tag]
	if !ok {
		t = &kdtree.Tree{}
		pt.trees[tag] = t
	}
	t.Insert(treePoint{p: p, id: id}, false)
}

// Find returns the index stored within tolerance of p under the given
// tag, or ErrNotFound.
func (pt *PointTree) Find(p r3.Vec, tag int) (mesh.PointIndex, error) {
	t, ok := pt.trees[tag]
	if !ok {
		return mesh.Invalid, fmt.Errorf("%w: tag %d (%v)", ErrNotFound, tag, p)
	}
	got, dist2 := t.Nearest(treePoint{p: p})
	if got == nil || dist2 > pt.tol2 {
		return mesh.Invalid, fmt.Errorf("%w: tag %d (%v)", ErrNotFound, tag, p)
	}
	return got.(treePoint).id, nil
}
