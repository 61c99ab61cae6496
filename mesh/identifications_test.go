package mesh

import "testing"

func TestIdentifications(t *testing.T) {
	var m Mesh
	idf := m.Identifications()

	nr := idf.GetNr("gap", IdentCloseSurfaces)
	if nr != 1 {
		t.Fatalf("got nr %d, want 1", nr)
	}
	// the same name keeps its number
	if idf.GetNr("gap", IdentCloseSurfaces) != 1 {
		t.Error("name not stable")
	}
	if idf.GetNr("periodic", IdentPeriodic) != 2 {
		t.Error("second name must get number 2")
	}
	if idf.N() != 2 {
		t.Errorf("got %d identifications, want 2", idf.N())
	}
	if idf.Name(1) != "gap" || idf.Type(1) != IdentCloseSurfaces {
		t.Error("wrong name or type for nr 1")
	}
	if idf.Name(2) != "periodic" || idf.Type(2) != IdentPeriodic {
		t.Error("wrong name or type for nr 2")
	}

	idf.Add(3, 7, "gap", IdentCloseSurfaces)
	idf.Add(3, 7, "gap", IdentCloseSurfaces) // duplicate
	idf.Add(4, 8, "gap", IdentCloseSurfaces)
	if got := len(idf.Pairs(1)); got != 2 {
		t.Errorf("got %d pairs, want 2", got)
	}
	if got := idf.Get(3, 1); got != 7 {
		t.Errorf("Get(3) = %d, want 7", got)
	}
	if got := idf.Get(9, 1); got != Invalid {
		t.Errorf("Get(9) = %d, want Invalid", got)
	}
	if len(idf.Pairs(2)) != 0 {
		t.Error("periodic identification must have no pairs")
	}
}
