package graph

import "context"

// Embedder turns text into a vector. Nil embedders are legal everywhere;
// the chunk store falls back to keyword scoring.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Vertex is an extracted entity. Names are unique within one graph.
type Vertex struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

// Edge endpoints are vertex indices into the graph's vertex slice.
type Edge struct {
	Source   int     `json:"source"`
	Target   int     `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

// NamedEdge addresses endpoints by vertex name instead of index.
type NamedEdge struct {
	Source   string
	Target   string
	Relation string
	Weight   float64
}

// Source points a response back at the entry an excerpt came from.
type Source struct {
	DreamID        int64    `json:"dream_id"`
	Excerpt        string   `json:"excerpt"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

// QueryResult is the model-facing answer shape for semantic search.
type QueryResult struct {
	Response         string   `json:"response"`
	Sources          []Source `json:"sources"`
	QueryType        string   `json:"query_type"`
	ProcessingTimeMS int64    `json:"processing_time_ms"`
}

type Stats struct {
	EntityCount       int `json:"entity_count"`
	RelationshipCount int `json:"relationship_count"`
	ChunkCount        int `json:"chunk_count"`
}

// Export is the nodes+links shape consumed by graph visualizations.
type Export struct {
	Nodes []Vertex `json:"nodes"`
	Links []Edge   `json:"links"`
}
