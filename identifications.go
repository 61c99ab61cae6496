package brep

// ProcessIdentifications assigns dense shape indices, lifts face
// identifications down the incidence hierarchy to edges and vertices,
// mirrors all records onto the partner shape and selects a primary
// representative with an accumulated primary-to-me transformation for
// every identification equivalence class.
//
// It must run exactly once, after all shapes and user identifications
// have been added and before meshing starts.
func (g *Geometry) ProcessIdentifications() {
	for i, v := range g.Vertices {
		v.Info().Nr = i
	}
	for i, e := range g.Edges {
		e.Info().Nr = i
	}
	for i, f := range g.Faces {
		f.Info().Nr = i
	}
	for i, s := range g.Solids {
		s.Info().Nr = i
	}

	tol := g.Tolerance()

	// lift face identifications onto mapped boundary edge pairs
	for _, f := range g.Faces {
		for _, ident := range f.Info().Identifications {
			if ident.Trafo == nil {
				continue
			}
			from := ident.From.(Face)
			to := ident.To.(Face)
			for _, e := range from.Edges() {
				for _, eOther := range to.Edges() {
					if isMappedEdge(e, eOther, *ident.Trafo, tol) {
						e.Info().Identifications = append(e.Info().Identifications,
							Identification{From: e, To: eOther, Trafo: ident.Trafo, Kind: ident.Kind, Name: ident.Name})
					}
				}
			}
		}
	}

	// lift edge identifications onto endpoint vertex pairs
	for _, e := range g.Edges {
		for _, ident := range e.Info().Identifications {
			if ident.Trafo == nil {
				continue
			}
			from := ident.From.(Edge)
			to := ident.To.(Edge)

			pfrom := [2]Vertex{from.StartVertex(), from.EndVertex()}
			pto := [2]Vertex{to.StartVertex(), to.EndVertex()}

			// swap target endpoints if the crossed pairing is closer
			pFrom0 := ident.Trafo.Apply(from.StartVertex().Point())
			pFrom1 := ident.Trafo.Apply(from.EndVertex().Point())
			pTo0 := to.StartVertex().Point()
			if dist(pFrom1, pTo0) < dist(pFrom0, pTo0) {
				pto[0], pto[1] = pto[1], pto[0]
			}

			for i := range pfrom {
				pfrom[i].Info().Identifications = append(pfrom[i].Info().Identifications,
					Identification{From: pfrom[i], To: pto[i], Trafo: ident.Trafo, Kind: ident.Kind, Name: ident.Name})
			}
		}
	}

	mirrorIdentifications(shapeList(g.Vertices))
	mirrorIdentifications(shapeList(g.Edges))
	mirrorIdentifications(shapeList(g.Faces))

	findPrimary(shapeList(g.Vertices))
	findPrimary(shapeList(g.Edges))
	findPrimary(shapeList(g.Faces))
}

func shapeList[S Shape](shapes []S) []Shape {
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s
	}
	return out
}

// mirrorIdentifications closes the identification graph under reversal:
// every record held by its From shape is appended to its To shape.
func mirrorIdentifications(shapes []Shape) {
	for i, s := range shapes {
		s.Info().Nr = i
		idents := s.Info().Identifications
		for _, ident := range idents {
			if ident.From == s && ident.To != s {
				ident.To.Info().Identifications = append(ident.To.Info().Identifications, ident)
			}
		}
	}
}

// findPrimary relaxes each shape's primary pointer to the smallest
// indexed member of its identification class and accumulates the
// transformation chain from the primary into the shape's frame.
func findPrimary(shapes []Shape) {
	for _, s := range shapes {
		s.Info().Primary = s
	}

	changed := true
	for changed {
		changed = false
		for _, s := range shapes {
			for _, ident := range s.Info().Identifications {
				needInverse := ident.From == s
				other := ident.From
				if needInverse {
					other = ident.To
				}
				if other.Info().Primary.Info().Nr < s.Info().Primary.Info().Nr {
					s.Info().Primary = other.Info().Primary
					changed = true
					if ident.Trafo != nil {
						trafo := *ident.Trafo
						if needInverse {
							trafo = trafo.Inv()
						}
						if s.Info().PrimaryToMe == nil {
							id := Identity()
							s.Info().PrimaryToMe = &id
						}
						if other.Info().PrimaryToMe == nil {
							id := Identity()
							other.Info().PrimaryToMe = &id
						}
						combined := Combine(trafo, *other.Info().PrimaryToMe)
						s.Info().PrimaryToMe = &combined
					}
				}
			}
		}
	}
}
