package graph

import (
	"fmt"

	"github.com/nightjar-app/nightjar/internal/logger"
)

// SafeStore wraps the raw Store with bounds checking. Batch mutators drop
// invalid edges and keep going so one bad extraction cannot abort an
// indexing run; reads never panic.
type SafeStore struct {
	g *Store
}

func NewSafeStore(g *Store) *SafeStore {
	return &SafeStore{g: g}
}

func (s *SafeStore) Raw() *Store       { return s.g }
func (s *SafeStore) VertexCount() int  { return s.g.VertexCount() }
func (s *SafeStore) EdgeCount() int    { return s.g.EdgeCount() }
func (s *SafeStore) AddVertex(v Vertex) int {
	return s.g.AddVertex(v)
}

func (s *SafeStore) VertexIndex(name string) (int, bool) {
	return s.g.VertexIndex(name)
}

func (s *SafeStore) Vertex(i int) (Vertex, bool) {
	if i < 0 || i >= s.g.VertexCount() {
		return Vertex{}, false
	}
	return s.g.Vertex(i), true
}

// AddEdgePairs drops pairs with out-of-range endpoints or self-loops,
// filtering the relation and weight attributes in lock-step so surviving
// edges keep their own attributes.
func (s *SafeStore) AddEdgePairs(pairs [][2]int, relations []string, weights []float64) []int {
	n := s.g.VertexCount()
	valid := make([][2]int, 0, len(pairs))
	validRelations := make([]string, 0, len(relations))
	validWeights := make([]float64, 0, len(weights))

	for i, p := range pairs {
		src, tgt := p[0], p[1]
		if src < 0 || src >= n || tgt < 0 || tgt >= n {
			logger.Warn("dropping edge with out-of-range endpoint",
				"source", src, "target", tgt, "vertices", n)
			continue
		}
		if src == tgt {
			logger.Warn("dropping self-loop edge", "vertex", src)
			continue
		}
		valid = append(valid, p)
		if i < len(relations) {
			validRelations = append(validRelations, relations[i])
		}
		if i < len(weights) {
			validWeights = append(validWeights, weights[i])
		}
	}

	if len(valid) == 0 {
		return nil
	}
	return s.g.AddEdgePairs(valid, validRelations, validWeights)
}

// AddNamedEdges drops edges whose endpoint names do not resolve.
func (s *SafeStore) AddNamedEdges(edges []NamedEdge) []int {
	valid := make([]NamedEdge, 0, len(edges))
	for _, ne := range edges {
		if _, ok := s.g.VertexIndex(ne.Source); !ok {
			logger.Warn("dropping edge with unresolved source", "source", ne.Source)
			continue
		}
		if _, ok := s.g.VertexIndex(ne.Target); !ok {
			logger.Warn("dropping edge with unresolved target", "target", ne.Target)
			continue
		}
		if ne.Source == ne.Target {
			logger.Warn("dropping self-loop edge", "vertex", ne.Source)
			continue
		}
		valid = append(valid, ne)
	}
	if len(valid) == 0 {
		return nil
	}
	return s.g.AddNamedEdges(valid)
}

// UpsertEdge updates the edge at *idx when idx is non-nil, otherwise
// inserts a new edge addressed by name. An out-of-bounds index is a
// programmer error and returns it as one; a new edge with an unresolved
// endpoint is skipped, returning -1 with no error. The returned index is
// the affected edge, or -1 for a skip.
func (s *SafeStore) UpsertEdge(edge NamedEdge, idx *int) (int, error) {
	if idx != nil {
		if *idx < 0 || *idx >= s.g.EdgeCount() {
			return -1, fmt.Errorf("edge index %d out of bounds (edge count %d)", *idx, s.g.EdgeCount())
		}
		e := s.g.EdgeAt(*idx)
		e.Relation = edge.Relation
		e.Weight = edge.Weight
		s.g.SetEdge(*idx, e)
		return *idx, nil
	}

	src, ok := s.g.VertexIndex(edge.Source)
	if !ok {
		logger.Warn("skipping edge upsert with unresolved source", "source", edge.Source)
		return -1, nil
	}
	tgt, ok := s.g.VertexIndex(edge.Target)
	if !ok {
		logger.Warn("skipping edge upsert with unresolved target", "target", edge.Target)
		return -1, nil
	}
	if src == tgt {
		logger.Warn("skipping self-loop edge upsert", "vertex", edge.Source)
		return -1, nil
	}

	added := s.g.AddEdgePairs([][2]int{{src, tgt}}, []string{edge.Relation}, []float64{edge.Weight})
	return added[0], nil
}

// AreNeighbors reports whether an edge connects src and tgt in either
// direction. Out-of-range indices are simply not neighbors.
func (s *SafeStore) AreNeighbors(src, tgt int) bool {
	n := s.g.VertexCount()
	if src < 0 || src >= n || tgt < 0 || tgt >= n {
		return false
	}
	for _, e := range s.g.Edges() {
		if (e.Source == src && e.Target == tgt) || (e.Source == tgt && e.Target == src) {
			return true
		}
	}
	return false
}

// EdgeIndices returns the indices of edges between src and tgt in either
// direction, nil for out-of-range endpoints.
func (s *SafeStore) EdgeIndices(src, tgt int) []int {
	n := s.g.VertexCount()
	if src < 0 || src >= n || tgt < 0 || tgt >= n {
		return nil
	}
	var out []int
	for i, e := range s.g.Edges() {
		if (e.Source == src && e.Target == tgt) || (e.Source == tgt && e.Target == src) {
			out = append(out, i)
		}
	}
	return out
}

func (s *SafeStore) EdgeByIndex(i int) (Edge, bool) {
	if i < 0 || i >= s.g.EdgeCount() {
		return Edge{}, false
	}
	return s.g.EdgeAt(i), true
}

// Neighbors returns the vertex indices adjacent to v.
func (s *SafeStore) Neighbors(v int) []int {
	if v < 0 || v >= s.g.VertexCount() {
		return nil
	}
	seen := map[int]bool{}
	var out []int
	for _, e := range s.g.Edges() {
		var other int
		switch v {
		case e.Source:
			other = e.Target
		case e.Target:
			other = e.Source
		default:
			continue
		}
		if other < 0 || other >= s.g.VertexCount() || seen[other] {
			continue
		}
		seen[other] = true
		out = append(out, other)
	}
	return out
}

func (s *SafeStore) Save() error { return s.g.Save() }
