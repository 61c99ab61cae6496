package meshing

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestPointTree(t *testing.T) {
	bbox := r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	tree := NewPointTree(bbox)

	pa := r3.Vec{X: 0.25, Y: 0.5, Z: 0}
	pb := r3.Vec{X: 0.75, Y: 0.5, Z: 0}
	tree.Insert(pa, 7, 1)
	tree.Insert(pb, 8, 1)
	tree.Insert(pa, 9, 2)

	pi, err := tree.Find(pa, 1)
	if err != nil {
		t.Fatal(err)
	}
	if pi != 7 {
		t.Errorf("got point %d, want 7", pi)
	}

	// the same location on another tag is a different point
	pi, err = tree.Find(pa, 2)
	if err != nil {
		t.Fatal(err)
	}
	if pi != 9 {
		t.Errorf("got point %d, want 9", pi)
	}

	if _, err = tree.Find(pa, 3); err == nil {
		t.Error("expected error for unknown tag")
	}

	// a point beyond the tolerance must not match
	off := r3.Vec{X: 0.25 + 1e-3, Y: 0.5, Z: 0}
	if _, err = tree.Find(off, 1); err == nil {
		t.Error("expected error for point outside tolerance")
	}

	near := r3.Vec{X: 0.25 + 1e-12, Y: 0.5, Z: 0}
	pi, err = tree.Find(near, 1)
	if err != nil {
		t.Fatal(err)
	}
	if pi != 7 {
		t.Errorf("got point %d, want 7", pi)
	}
}
