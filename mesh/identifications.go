package mesh

// IdentificationType classifies a point identification stored with the
// mesh. Periodic pairs are copied between boundaries, close surface pairs
// connect thin gaps with prism-like elements.
type IdentificationType int

const (
	IdentUndefined IdentificationType = iota
	IdentPeriodic
	IdentCloseSurfaces
)

// PointPair is an ordered identified point pair.
type PointPair struct {
	I1, I2 PointIndex
}

// Identifications records which mesh points are copies of each other
// under the geometry's named identifications.
type Identifications struct {
	names []string
	types []IdentificationType
	nrOf  map[string]int
	pairs map[int]map[PointPair]bool
}

func newIdentifications() *Identifications {
	return &Identifications{
		nrOf:  map[string]int{},
		pairs: map[int]map[PointPair]bool{},
	}
}

// GetNr returns the identification number for name, allocating one on
// first use. Numbers start at 1.
func (idf *Identifications) GetNr(name string, typ IdentificationType) int {
	if nr, ok := idf.nrOf[name]; ok {
		return nr
	}
	idf.names = append(idf.names, name)
	idf.types = append(idf.types, typ)
	nr := len(idf.names)
	idf.nrOf[name] = nr
	idf.pairs[nr] = map[PointPair]bool{}
	return nr
}

// Add records that point i1 maps onto point i2 under the named
// identification. Duplicate pairs are ignored.
func (idf *Identifications) Add(i1, i2 PointIndex, name string, typ IdentificationType) {
	nr := idf.GetNr(name, typ)
	idf.pairs[nr][PointPair{I1: i1, I2: i2}] = true
}

// N returns the number of distinct identifications.
func (idf *Identifications) N() int { return len(idf.names) }

// Name returns the name of identification nr (1-based).
func (idf *Identifications) Name(nr int) string { return idf.names[nr-1] }

// Type returns the type of identification nr (1-based).
func (idf *Identifications) Type(nr int) IdentificationType { return idf.types[nr-1] }

// Pairs returns the identified point pairs of identification nr in
// unspecified order.
func (idf *Identifications) Pairs(nr int) []PointPair {
	out := make([]PointPair, 0, len(idf.pairs[nr]))
	for p := range idf.pairs[nr] {
		out = append(out, p)
	}
	return out
}

// Get returns the point identified with i1 under identification nr, or
// Invalid if none is recorded.
func (idf *Identifications) Get(i1 PointIndex, nr int) PointIndex {
	for p := range idf.pairs[nr] {
		if p.I1 == i1 {
			return p.I2
		}
	}
	return Invalid
}
