package graph

import (
	"testing"
)

func testSafeStore(t *testing.T, names ...string) *SafeStore {
	t.Helper()
	store, err := LoadStore(t.TempDir())
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	safe := NewSafeStore(store)
	for _, name := range names {
		safe.AddVertex(Vertex{Name: name, Kind: "symbol"})
	}
	return safe
}

func TestAddEdgePairsDropsInvalid(t *testing.T) {
	safe := testSafeStore(t, "a", "b", "c")

	pairs := [][2]int{
		{0, 1},   // valid
		{0, 99},  // target out of range
		{-1, 2},  // source out of range
		{1, 1},   // self-loop
		{2, 0},   // valid
	}
	relations := []string{"r0", "r1", "r2", "r3", "r4"}
	weights := []float64{1, 2, 3, 4, 5}

	added := safe.AddEdgePairs(pairs, relations, weights)
	if len(added) != 2 {
		t.Fatalf("expected 2 surviving edges, got %d", len(added))
	}
	if safe.EdgeCount() != 2 {
		t.Fatalf("expected edge count 2, got %d", safe.EdgeCount())
	}

	// attributes must follow their surviving edges in lock-step
	first, ok := safe.EdgeByIndex(added[0])
	if !ok || first.Relation != "r0" || first.Weight != 1 {
		t.Errorf("first surviving edge got wrong attrs: %+v", first)
	}
	second, ok := safe.EdgeByIndex(added[1])
	if !ok || second.Relation != "r4" || second.Weight != 5 {
		t.Errorf("second surviving edge got wrong attrs: %+v", second)
	}
}

func TestAddEdgePairsAllInvalid(t *testing.T) {
	safe := testSafeStore(t, "a")

	added := safe.AddEdgePairs([][2]int{{0, 5}, {0, 0}}, []string{"x", "y"}, []float64{1, 1})
	if added != nil {
		t.Errorf("expected nil for fully dropped batch, got %v", added)
	}
	if safe.EdgeCount() != 0 {
		t.Errorf("expected no edges, got %d", safe.EdgeCount())
	}
}

func TestAddNamedEdgesDropsUnresolved(t *testing.T) {
	safe := testSafeStore(t, "water", "house")

	added := safe.AddNamedEdges([]NamedEdge{
		{Source: "water", Target: "house", Relation: "co_occurs"},
		{Source: "water", Target: "ghost", Relation: "co_occurs"},
		{Source: "nobody", Target: "house", Relation: "co_occurs"},
	})
	if len(added) != 1 {
		t.Fatalf("expected 1 surviving edge, got %d", len(added))
	}
	e, _ := safe.EdgeByIndex(added[0])
	if e.Relation != "co_occurs" {
		t.Errorf("unexpected edge: %+v", e)
	}
}

func TestUpsertEdge(t *testing.T) {
	safe := testSafeStore(t, "water", "house")
	added := safe.AddNamedEdges([]NamedEdge{{Source: "water", Target: "house", Relation: "old", Weight: 1}})

	// update in place
	idx := added[0]
	got, err := safe.UpsertEdge(NamedEdge{Source: "water", Target: "house", Relation: "new", Weight: 2}, &idx)
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if got != idx {
		t.Errorf("expected index %d back, got %d", idx, got)
	}
	e, _ := safe.EdgeByIndex(idx)
	if e.Relation != "new" || e.Weight != 2 {
		t.Errorf("edge not updated: %+v", e)
	}

	// out-of-bounds index is a programmer error
	bad := 42
	if _, err := safe.UpsertEdge(NamedEdge{Source: "water", Target: "house"}, &bad); err == nil {
		t.Error("expected error for out-of-bounds index")
	}

	// new edge with a missing endpoint is a silent skip
	got, err = safe.UpsertEdge(NamedEdge{Source: "water", Target: "ghost"}, nil)
	if err != nil {
		t.Fatalf("upsert skip: %v", err)
	}
	if got != -1 {
		t.Errorf("expected -1 for skipped upsert, got %d", got)
	}
	if safe.EdgeCount() != 1 {
		t.Errorf("skip should not add edges, count = %d", safe.EdgeCount())
	}

	// new edge with both endpoints resolved inserts
	got, err = safe.UpsertEdge(NamedEdge{Source: "house", Target: "water", Relation: "r"}, nil)
	if err != nil {
		t.Fatalf("upsert insert: %v", err)
	}
	if got != 1 {
		t.Errorf("expected new edge index 1, got %d", got)
	}
}

func TestReadsNeverPanic(t *testing.T) {
	safe := testSafeStore(t, "a", "b")
	safe.AddEdgePairs([][2]int{{0, 1}}, []string{"r"}, []float64{1})

	if safe.AreNeighbors(0, 99) {
		t.Error("out-of-range AreNeighbors should be false")
	}
	if safe.AreNeighbors(-3, 0) {
		t.Error("negative index AreNeighbors should be false")
	}
	if !safe.AreNeighbors(1, 0) {
		t.Error("expected 0 and 1 to be neighbors in either direction")
	}

	if got := safe.EdgeIndices(0, 99); got != nil {
		t.Errorf("expected nil edge indices, got %v", got)
	}
	if got := safe.EdgeIndices(1, 0); len(got) != 1 {
		t.Errorf("expected 1 edge between 0 and 1, got %v", got)
	}

	if _, ok := safe.EdgeByIndex(99); ok {
		t.Error("expected miss for out-of-range edge index")
	}
	if _, ok := safe.Vertex(-1); ok {
		t.Error("expected miss for negative vertex index")
	}
	if got := safe.Neighbors(99); got != nil {
		t.Errorf("expected nil neighbors, got %v", got)
	}
}

func TestStorePersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	store, err := LoadStore(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	safe := NewSafeStore(store)
	safe.AddVertex(Vertex{Name: "water", Kind: "symbol"})
	safe.AddVertex(Vertex{Name: "house", Kind: "symbol"})
	safe.AddEdgePairs([][2]int{{0, 1}}, []string{"co_occurs"}, []float64{0.5})
	if err := safe.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := LoadStore(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.VertexCount() != 2 || reloaded.EdgeCount() != 1 {
		t.Errorf("reloaded %d vertices, %d edges", reloaded.VertexCount(), reloaded.EdgeCount())
	}
	if i, ok := reloaded.VertexIndex("house"); !ok || i != 1 {
		t.Errorf("name index not rebuilt: %d %v", i, ok)
	}
}

func TestAddVertexUpserts(t *testing.T) {
	safe := testSafeStore(t)

	first := safe.AddVertex(Vertex{Name: "water", Kind: "symbol"})
	second := safe.AddVertex(Vertex{Name: "water", Kind: "symbol", Description: "the unconscious"})
	if first != second {
		t.Errorf("expected same index, got %d and %d", first, second)
	}
	v, _ := safe.Vertex(first)
	if v.Description != "the unconscious" {
		t.Errorf("description not updated: %+v", v)
	}
	if safe.VertexCount() != 1 {
		t.Errorf("expected 1 vertex, got %d", safe.VertexCount())
	}
}
