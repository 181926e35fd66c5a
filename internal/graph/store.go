package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const graphFile = "graph.json"

// Store is the raw index-addressed graph primitive. Mutators do not
// validate: edges with out-of-range or unresolved endpoints are appended
// as given and corrupt later lookups. Callers wanting bounds safety go
// through SafeStore.
type Store struct {
	path     string
	vertices []Vertex
	edges    []Edge
	byName   map[string]int
}

type storeFile struct {
	Vertices []Vertex `json:"vertices"`
	Edges    []Edge   `json:"edges"`
}

// LoadStore reads the graph from dir, starting empty when no file exists.
func LoadStore(dir string) (*Store, error) {
	s := &Store{
		path:   filepath.Join(dir, graphFile),
		byName: make(map[string]int),
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}

	var f storeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}
	s.vertices = f.Vertices
	s.edges = f.Edges
	for i, v := range s.vertices {
		s.byName[v.Name] = i
	}
	return s, nil
}

func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(storeFile{Vertices: s.vertices, Edges: s.edges})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *Store) VertexCount() int { return len(s.vertices) }
func (s *Store) EdgeCount() int   { return len(s.edges) }

// AddVertex upserts by name and returns the vertex index. An existing
// vertex keeps its index; a non-empty description overwrites.
func (s *Store) AddVertex(v Vertex) int {
	if i, ok := s.byName[v.Name]; ok {
		if v.Description != "" {
			s.vertices[i].Description = v.Description
		}
		if v.Kind != "" {
			s.vertices[i].Kind = v.Kind
		}
		return i
	}
	s.vertices = append(s.vertices, v)
	i := len(s.vertices) - 1
	s.byName[v.Name] = i
	return i
}

func (s *Store) VertexIndex(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// Vertex panics when i is out of range, like any slice access.
func (s *Store) Vertex(i int) Vertex { return s.vertices[i] }

// EdgeAt panics when i is out of range.
func (s *Store) EdgeAt(i int) Edge { return s.edges[i] }

// AddEdgePairs appends one edge per index pair with the lock-step relation
// and weight attributes, returning the new edge indices.
func (s *Store) AddEdgePairs(pairs [][2]int, relations []string, weights []float64) []int {
	added := make([]int, 0, len(pairs))
	for i, p := range pairs {
		e := Edge{Source: p[0], Target: p[1]}
		if i < len(relations) {
			e.Relation = relations[i]
		}
		if i < len(weights) {
			e.Weight = weights[i]
		}
		s.edges = append(s.edges, e)
		added = append(added, len(s.edges)-1)
	}
	return added
}

// AddNamedEdges resolves endpoint names and appends. Unresolved names
// become index -1 and are recorded as given.
func (s *Store) AddNamedEdges(edges []NamedEdge) []int {
	added := make([]int, 0, len(edges))
	for _, ne := range edges {
		src, ok := s.byName[ne.Source]
		if !ok {
			src = -1
		}
		tgt, ok := s.byName[ne.Target]
		if !ok {
			tgt = -1
		}
		s.edges = append(s.edges, Edge{Source: src, Target: tgt, Relation: ne.Relation, Weight: ne.Weight})
		added = append(added, len(s.edges)-1)
	}
	return added
}

// SetEdge overwrites the edge at index i. Panics when out of range.
func (s *Store) SetEdge(i int, e Edge) { s.edges[i] = e }

// Edges returns the backing edge slice. Read-only by convention.
func (s *Store) Edges() []Edge { return s.edges }

// Vertices returns the backing vertex slice. Read-only by convention.
func (s *Store) Vertices() []Vertex { return s.vertices }
