package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// gradingBox is one octant of the local mesh size octree. Each box stores
// the optimal mesh size hOpt valid inside it; children refine the size
// field where restrictions demand a finer resolution than the box width.
type gradingBox struct {
	center   r3.Vec
	h2       float64 // half the box width
	children [8]*gradingBox
	hOpt     float64
}

func newGradingBox(center r3.Vec, h2 float64) *gradingBox {
	return &gradingBox{center: center, h2: h2, hOpt: 2 * h2}
}

func (b *gradingBox) contains(p r3.Vec) bool {
	return p.X >= b.center.X-b.h2 && p.X <= b.center.X+b.h2 &&
		p.Y >= b.center.Y-b.h2 && p.Y <= b.center.Y+b.h2 &&
		p.Z >= b.center.Z-b.h2 && p.Z <= b.center.Z+b.h2
}

// childIndex encodes the octant of p relative to the box center.
func (b *gradingBox) childIndex(p r3.Vec) int {
	i := 0
	if p.X > b.center.X {
		i |= 1
	}
	if p.Y > b.center.Y {
		i |= 2
	}
	if p.Z > b.center.Z {
		i |= 4
	}
	return i
}

func (b *gradingBox) child(i int) *gradingBox {
	if b.children[i] == nil {
		h2 := 0.5 * b.h2
		c := b.center
		dx, dy, dz := -h2, -h2, -h2
		if i&1 != 0 {
			dx = h2
		}
		if i&2 != 0 {
			dy = h2
		}
		if i&4 != 0 {
			dz = h2
		}
		b.children[i] = newGradingBox(r3.Vec{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}, h2)
	}
	return b.children[i]
}

// LocalH is a graded mesh size field over a cubic domain. Restrictions
// lower the size at a point and propagate outward so that the size never
// grows faster than the grading factor allows.
type LocalH struct {
	root    *gradingBox
	grading float64
}

// NewLocalH builds the size field over the bounding box pmin..pmax. The
// root cube is centered on the box and spans its largest extent.
func NewLocalH(pmin, pmax r3.Vec, grading float64) *LocalH {
	c := r3.Scale(0.5, r3.Add(pmin, pmax))
	d := r3.Sub(pmax, pmin)
	h2 := 0.5 * maxFloat(d.X, maxFloat(d.Y, d.Z))
	if h2 <= 0 {
		h2 = 0.5
	}
	return &LocalH{root: newGradingBox(c, h2), grading: grading}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// SetH restricts the mesh size at p to at most h. The restriction spreads
// to neighboring regions with the configured grading so that adjacent
// sizes differ by no more than grading times the distance.
func (lh *LocalH) SetH(p r3.Vec, h float64) {
	if !lh.root.contains(p) {
		return
	}
	if lh.GetH(p) <= 1.2*h {
		return
	}

	box := lh.root
	for 2*box.h2 > h {
		box = box.child(box.childIndex(p))
	}
	box.hOpt = h

	// propagate to the six axis neighbors
	hbox := 2 * box.h2
	hnp := h + lh.grading*hbox
	lh.SetH(r3.Vec{X: p.X + hbox, Y: p.Y, Z: p.Z}, hnp)
	lh.SetH(r3.Vec{X: p.X - hbox, Y: p.Y, Z: p.Z}, hnp)
	lh.SetH(r3.Vec{X: p.X, Y: p.Y + hbox, Z: p.Z}, hnp)
	lh.SetH(r3.Vec{X: p.X, Y: p.Y - hbox, Z: p.Z}, hnp)
	lh.SetH(r3.Vec{X: p.X, Y: p.Y, Z: p.Z + hbox}, hnp)
	lh.SetH(r3.Vec{X: p.X, Y: p.Y, Z: p.Z - hbox}, hnp)
}

// GetH returns the mesh size stored for the finest box containing p. For
// points outside the root cube the root size is returned.
func (lh *LocalH) GetH(p r3.Vec) float64 {
	box := lh.root
	for {
		if !box.contains(p) {
			return box.hOpt
		}
		next := box.children[box.childIndex(p)]
		if next == nil {
			return box.hOpt
		}
		box = next
	}
}
