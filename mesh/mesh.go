// Package mesh holds the mesh under construction: points, 1D segments,
// 2D surface elements, face descriptors, the name tables, the point
// identification table and the local mesh size octree.
package mesh

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// PointIndex addresses a mesh point. Indices are zero based and dense.
type PointIndex int

// Invalid marks an unset point index.
const Invalid PointIndex = -1

// PointType categorizes a mesh point by the manifold it originated on.
// An EdgePoint is never promoted to FixedPoint.
type PointType int

const (
	InnerPoint PointType = iota
	SurfacePoint
	EdgePoint
	FixedPoint
)

// Point is a mesh node.
type Point struct {
	r3.Vec
	Layer    int
	Type     PointType
	Singular bool
}

// EdgePointGeomInfo carries the parametric payload of a segment endpoint.
type EdgePointGeomInfo struct {
	U, V float64
	// Dist is the curve parameter of the endpoint on its edge.
	Dist   float64
	EdgeNr int
}

// Segment is a 1D boundary element between two mesh points.
type Segment struct {
	P [2]PointIndex
	// EdgeNr and SI are the one based geometry edge number and surface
	// index the segment belongs to.
	EdgeNr, SI    int
	GeomInfo      [2]EdgePointGeomInfo
	SingEdgeLeft  bool
	SingEdgeRight bool
	DomIn, DomOut int
}

// PointGeomInfo carries the parametric coordinates of a surface element
// corner on its face.
type PointGeomInfo struct {
	U, V    float64
	TrigNum int
}

// Element2d is a surface element with three or four corners.
type Element2d struct {
	PNums    []PointIndex
	GeomInfo []PointGeomInfo
	index    int // one based face number
}

// NewElement2d returns an element with np corners, all invalid.
func NewElement2d(np int) Element2d {
	el := Element2d{
		PNums:    make([]PointIndex, np),
		GeomInfo: make([]PointGeomInfo, np),
	}
	for i := range el.PNums {
		el.PNums[i] = Invalid
	}
	return el
}

// NP returns the number of corners.
func (el *Element2d) NP() int { return len(el.PNums) }

// Index returns the one based face number the element belongs to.
func (el *Element2d) Index() int { return el.index }

// SetIndex assigns the one based face number.
func (el *Element2d) SetIndex(i int) { el.index = i }

// PNumMod returns corner i in one based circular addressing.
func (el *Element2d) PNumMod(i int) PointIndex {
	return el.PNums[(i-1)%len(el.PNums)]
}

// Invert reverses the element winding, flipping its normal.
func (el *Element2d) Invert() {
	for i, j := 1, len(el.PNums)-1; i < j; i, j = i+1, j-1 {
		el.PNums[i], el.PNums[j] = el.PNums[j], el.PNums[i]
		el.GeomInfo[i], el.GeomInfo[j] = el.GeomInfo[j], el.GeomInfo[i]
	}
}

// PointElement is a zero dimensional element pinned to a mesh point.
type PointElement struct {
	PNum  PointIndex
	Index int
	Name  string
}

// FaceDescriptor describes one mesh face: its surface number, the domains
// in front and behind, and the boundary condition property.
type FaceDescriptor struct {
	SurfNr, DomIn, DomOut, BCProp int
	Colour                        *[4]float64
}

// Mesh is the mesh under construction. It is exclusively owned by the
// pipeline driver during generation and grows monotonically. The zero
// value is an empty mesh ready for use.
type Mesh struct {
	points        []Point
	segments      []Segment
	surfElements  []Element2d
	pointElements []PointElement
	faceDescr     []FaceDescriptor

	bcNames   map[int]string
	cd2Names  map[int]string
	cd3Names  map[int]string
	materials map[int]string

	ident *Identifications

	globalH, minH float64
	grading       float64
	localH        map[int]*LocalH
	hBoxMin       r3.Vec
	hBoxMax       r3.Vec

	// point to surface element adjacency, rebuilt by CalcSurfacesOfNode
	surfOfNode map[PointIndex][]int

	dimension int
}

// AddPoint appends a point and returns its index.
func (m *Mesh) AddPoint(p r3.Vec, layer int, typ PointType) PointIndex {
	m.points = append(m.points, Point{Vec: p, Layer: layer, Type: typ})
	return PointIndex(len(m.points) - 1)
}

// Point returns the addressed point for mutation.
func (m *Mesh) Point(pi PointIndex) *Point { return &m.points[pi] }

// Points returns the mesh point slice.
func (m *Mesh) Points() []Point { return m.points }

// NP returns the number of mesh points.
func (m *Mesh) NP() int { return len(m.points) }

// AddSegment appends a 1D boundary element.
func (m *Mesh) AddSegment(seg Segment) { m.segments = append(m.segments, seg) }

// Segments returns the segment slice.
func (m *Mesh) Segments() []Segment { return m.segments }

// AddSurfaceElement appends a surface element and returns its index.
func (m *Mesh) AddSurfaceElement(el Element2d) int {
	m.surfElements = append(m.surfElements, el)
	return len(m.surfElements) - 1
}

// SurfaceElements returns the surface element slice.
func (m *Mesh) SurfaceElements() []Element2d { return m.surfElements }

// NSE returns the number of surface elements.
func (m *Mesh) NSE() int { return len(m.surfElements) }

// AddPointElement appends a zero dimensional element.
func (m *Mesh) AddPointElement(el PointElement) { m.pointElements = append(m.pointElements, el) }

// PointElements returns the point element slice.
func (m *Mesh) PointElements() []PointElement { return m.pointElements }

// ClearFaceDescriptors drops all face descriptors.
func (m *Mesh) ClearFaceDescriptors() { m.faceDescr = m.faceDescr[:0] }

// AddFaceDescriptor appends a face descriptor and returns its one based
// number.
func (m *Mesh) AddFaceDescriptor(fd FaceDescriptor) int {
	m.faceDescr = append(m.faceDescr, fd)
	return len(m.faceDescr)
}

// FaceDescriptors returns the face descriptor slice.
func (m *Mesh) FaceDescriptors() []FaceDescriptor { return m.faceDescr }

// NFD returns the number of face descriptors.
func (m *Mesh) NFD() int { return len(m.faceDescr) }

func setName(names *map[int]string, nr int, name string) {
	if *names == nil {
		*names = map[int]string{}
	}
	(*names)[nr] = name
}

// SetBCName names the boundary condition of the zero based face number.
func (m *Mesh) SetBCName(nr int, name string) { setName(&m.bcNames, nr, name) }

// BCName returns the boundary condition name of the zero based face number.
func (m *Mesh) BCName(nr int) string { return m.bcNames[nr] }

// SetCD2Name names a codimension 2 (edge) entity.
func (m *Mesh) SetCD2Name(nr int, name string) { setName(&m.cd2Names, nr, name) }

// CD2Name returns the name of a codimension 2 entity.
func (m *Mesh) CD2Name(nr int) string { return m.cd2Names[nr] }

// SetCD3Name names a codimension 3 (vertex) entity.
func (m *Mesh) SetCD3Name(nr int, name string) { setName(&m.cd3Names, nr, name) }

// CD3Name returns the name of a codimension 3 entity.
func (m *Mesh) CD3Name(nr int) string { return m.cd3Names[nr] }

// SetMaterial names the one based domain number.
func (m *Mesh) SetMaterial(domain int, name string) { setName(&m.materials, domain, name) }

// Material returns the name of the one based domain number.
func (m *Mesh) Material(domain int) string { return m.materials[domain] }

// NDomains returns the highest domain number referenced by any face
// descriptor.
func (m *Mesh) NDomains() int {
	n := 0
	for _, fd := range m.faceDescr {
		if fd.DomIn > n {
			n = fd.DomIn
		}
		if fd.DomOut > n {
			n = fd.DomOut
		}
	}
	return n
}

// Identifications returns the mesh level point identification table.
func (m *Mesh) Identifications() *Identifications {
	if m.ident == nil {
		m.ident = newIdentifications()
	}
	return m.ident
}

// SetDimension records the mesh dimension.
func (m *Mesh) SetDimension(d int) { m.dimension = d }

// Dimension returns the mesh dimension.
func (m *Mesh) Dimension() int { return m.dimension }

// SetGlobalH caps the mesh size field globally.
func (m *Mesh) SetGlobalH(h float64) { m.globalH = h }

// SetMinimalH floors the mesh size field globally.
func (m *Mesh) SetMinimalH(h float64) { m.minH = h }

// SetLocalH seeds the local mesh size octree over the given box with the
// given grading factor. It must be called before any restriction.
func (m *Mesh) SetLocalH(pmin, pmax r3.Vec, grading float64) {
	m.hBoxMin, m.hBoxMax = pmin, pmax
	m.grading = grading
	m.localH = map[int]*LocalH{1: NewLocalH(pmin, pmax, grading)}
}

func (m *Mesh) localHLayer(layer int) *LocalH {
	if layer <= 0 {
		layer = 1
	}
	lh, ok := m.localH[layer]
	if !ok {
		lh = NewLocalH(m.hBoxMin, m.hBoxMax, m.grading)
		m.localH[layer] = lh
	}
	return lh
}

// RestrictLocalH lowers the mesh size near p to at most h on the given
// layer. Restrictions compose by minimum and are order invariant.
func (m *Mesh) RestrictLocalH(p r3.Vec, h float64, layer int) {
	if len(m.localH) == 0 {
		return
	}
	if h < m.minH {
		h = m.minH
	}
	m.localHLayer(layer).SetH(p, h)
}

// RestrictLocalHLine lowers the mesh size to at most h along the segment
// p1-p2 by restricting sample points spaced about h apart.
func (m *Mesh) RestrictLocalHLine(p1, p2 r3.Vec, h float64, layer int) {
	if h < m.minH {
		h = m.minH
	}
	steps := int(r3.Norm(r3.Sub(p2, p1))/h) + 2
	d := r3.Sub(p2, p1)
	for i := 0; i <= steps; i++ {
		p := r3.Add(p1, r3.Scale(float64(i)/float64(steps), d))
		m.RestrictLocalH(p, h, layer)
	}
}

// GetH returns the target mesh size at p, the minimum of the global cap
// and the local octree on the point's layer.
func (m *Mesh) GetH(p r3.Vec, layer int) float64 {
	h := m.globalH
	if lh, ok := m.localH[maxInt(layer, 1)]; ok {
		h = math.Min(h, lh.GetH(p))
	}
	return h
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// LoadLocalMeshSize reads additional mesh size restrictions: a count of
// point rows "x y z h" followed by a count of line rows
// "x1 y1 z1 x2 y2 z2 h".
func (m *Mesh) LoadLocalMeshSize(filename string) error {
	if filename == "" {
		return nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("mesh: opening mesh size file: %w", err)
	}
	defer f.Close()
	return m.ReadLocalMeshSize(f)
}

// ReadLocalMeshSize parses the mesh size file format from r.
func (m *Mesh) ReadLocalMeshSize(r io.Reader) error {
	br := bufio.NewReader(r)
	var nPoints int
	if _, err := fmt.Fscan(br, &nPoints); err != nil {
		return fmt.Errorf("mesh: reading mesh size point count: %w", err)
	}
	for i := 0; i < nPoints; i++ {
		var p r3.Vec
		var h float64
		if _, err := fmt.Fscan(br, &p.X, &p.Y, &p.Z, &h); err != nil {
			return fmt.Errorf("mesh: reading mesh size point %d: %w", i, err)
		}
		m.RestrictLocalH(p, h, 1)
	}
	var nLines int
	if _, err := fmt.Fscan(br, &nLines); err != nil {
		return fmt.Errorf("mesh: reading mesh size line count: %w", err)
	}
	for i := 0; i < nLines; i++ {
		var p1, p2 r3.Vec
		var h float64
		if _, err := fmt.Fscan(br, &p1.X, &p1.Y, &p1.Z, &p2.X, &p2.Y, &p2.Z, &h); err != nil {
			return fmt.Errorf("mesh: reading mesh size line %d: %w", i, err)
		}
		m.RestrictLocalHLine(p1, p2, h, 1)
	}
	return nil
}

// CalcSurfacesOfNode rebuilds the point to surface element adjacency.
func (m *Mesh) CalcSurfacesOfNode() {
	m.surfOfNode = make(map[PointIndex][]int, len(m.points))
	for sei := range m.surfElements {
		for _, pi := range m.surfElements[sei].PNums {
			m.surfOfNode[pi] = append(m.surfOfNode[pi], sei)
		}
	}
}

// SurfaceElementsOfFace returns the indices of all surface elements
// assigned to the one based face number.
func (m *Mesh) SurfaceElementsOfFace(faceNr int) []int {
	var out []int
	for sei := range m.surfElements {
		if m.surfElements[sei].index == faceNr {
			out = append(out, sei)
		}
	}
	return out
}

// OrderElements sorts surface elements by face number, keeping insertion
// order within a face.
func (m *Mesh) OrderElements() {
	sort.SliceStable(m.surfElements, func(i, j int) bool {
		return m.surfElements[i].index < m.surfElements[j].index
	})
}
