package graph

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/nightjar-app/nightjar/internal/llm"
	"github.com/nightjar-app/nightjar/internal/logger"
)

const chunksFile = "chunks.db"

// pairwiseCap bounds co-occurrence edges per document.
const pairwiseCap = 8

var (
	headerPattern  = regexp.MustCompile(`^\[Dream ID:\s*(\d+)\]\s*\[Date:\s*([^\]]*)\]\s*\[Title:\s*([^\]]*)\]`)
	emotionPattern = regexp.MustCompile(`^•\s+(.+?)\s+\(\d+/10\)$`)
)

// Engine owns one user's graph and chunk storage and answers questions
// over them.
type Engine struct {
	dir     string
	safe    *SafeStore
	chunks  *ChunkStore
	model   llm.LLM
	profile Profile
}

func OpenEngine(dir string, model llm.LLM, embedder Embedder, profile Profile) (*Engine, error) {
	store, err := LoadStore(dir)
	if err != nil {
		return nil, err
	}
	chunks, err := OpenChunks(filepath.Join(dir, chunksFile), embedder)
	if err != nil {
		return nil, err
	}
	return &Engine{
		dir:     dir,
		safe:    NewSafeStore(store),
		chunks:  chunks,
		model:   model,
		profile: profile,
	}, nil
}

func (e *Engine) Close() error {
	return e.chunks.Close()
}

// Answer is the raw engine output before source extraction.
type Answer struct {
	Response   string
	References []string
	Context    []string
}

// docEntities is what the canonical document parser recovers.
type docEntities struct {
	DreamID  int64
	Dream    Vertex
	Entities []Vertex
}

// Insert parses the canonical document, grows the graph through the safe
// store, and records the document as a retrieval chunk.
func (e *Engine) Insert(ctx context.Context, dreamID int64, content string) error {
	doc, err := parseDocument(content)
	if err != nil {
		return err
	}
	if doc.DreamID != dreamID {
		return fmt.Errorf("document header claims dream %d, expected %d", doc.DreamID, dreamID)
	}

	dreamIdx := e.safe.AddVertex(doc.Dream)

	entityIdx := make([]int, 0, len(doc.Entities))
	for _, v := range doc.Entities {
		entityIdx = append(entityIdx, e.safe.AddVertex(v))
	}

	var pairs [][2]int
	var relations []string
	var weights []float64
	for _, idx := range entityIdx {
		pairs = append(pairs, [2]int{dreamIdx, idx})
		relations = append(relations, "features")
		weights = append(weights, 1)
	}

	capped := entityIdx
	if len(capped) > pairwiseCap {
		capped = capped[:pairwiseCap]
	}
	for i := 0; i < len(capped); i++ {
		for j := i + 1; j < len(capped); j++ {
			pairs = append(pairs, [2]int{capped[i], capped[j]})
			relations = append(relations, "co_occurs")
			weights = append(weights, 0.5)
		}
	}

	e.safe.AddEdgePairs(pairs, relations, weights)

	if _, err := e.chunks.Add(ctx, dreamID, content); err != nil {
		return err
	}

	if err := e.safe.Save(); err != nil {
		return fmt.Errorf("persist graph: %w", err)
	}

	logger.Debug("indexed document", "dream_id", dreamID,
		"vertices", e.safe.VertexCount(), "edges", e.safe.EdgeCount())
	return nil
}

// Query retrieves the best chunks and the graph neighborhood of entities
// named in the question, then asks the model to compose an answer.
func (e *Engine) Query(ctx context.Context, question string) (*Answer, error) {
	chunks, err := e.chunks.Search(ctx, question, 5)
	if err != nil {
		return nil, err
	}

	references := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		references = append(references, ch.Content)
	}

	contextSpans := e.graphContext(question)

	var prompt strings.Builder
	prompt.WriteString("QUESTION: " + question + "\n\n")
	if len(references) > 0 {
		prompt.WriteString("JOURNAL ENTRIES:\n")
		for _, ref := range references {
			prompt.WriteString(ref + "\n\n")
		}
	}
	if len(contextSpans) > 0 {
		prompt.WriteString("KNOWLEDGE GRAPH CONTEXT:\n")
		for _, span := range contextSpans {
			prompt.WriteString("- " + span + "\n")
		}
	}
	if len(references) == 0 && len(contextSpans) == 0 {
		prompt.WriteString("No journal material matched the question. Say so honestly.\n")
	}

	system := fmt.Sprintf(
		"You are an expert in %s, answering questions about one person's private journal. "+
			"Ground every claim in the journal material provided. Cite entries by their titles. "+
			"When the material is thin, say what is missing instead of inventing.",
		e.profile.Domain)

	response, err := e.model.Chat(ctx, system, []llm.Message{
		{Role: "user", Content: prompt.String()},
	})
	if err != nil {
		return nil, err
	}

	return &Answer{
		Response:   response,
		References: references,
		Context:    contextSpans,
	}, nil
}

// graphContext finds vertices named in the question and describes their
// neighborhoods, including the tagged names of connected dreams.
func (e *Engine) graphContext(question string) []string {
	lower := strings.ToLower(question)
	var spans []string

	for i, v := range e.safe.Raw().Vertices() {
		if v.Kind == "dream" {
			continue
		}
		if !strings.Contains(lower, strings.ToLower(v.Name)) {
			continue
		}

		var connected []string
		for _, n := range e.safe.Neighbors(i) {
			nv, ok := e.safe.Vertex(n)
			if !ok {
				continue
			}
			if nv.Kind == "dream" {
				connected = append(connected, nv.Name)
			}
		}

		span := fmt.Sprintf("%s %q", v.Kind, v.Name)
		if v.Description != "" {
			span += " (" + v.Description + ")"
		}
		if len(connected) > 0 {
			span += " appears in: " + strings.Join(connected, "; ")
		}
		spans = append(spans, span)
	}

	return spans
}

func (e *Engine) Stats() (*Stats, error) {
	chunkCount, err := e.chunks.Count()
	if err != nil {
		return nil, err
	}
	return &Stats{
		EntityCount:       e.safe.VertexCount(),
		RelationshipCount: e.safe.EdgeCount(),
		ChunkCount:        chunkCount,
	}, nil
}

func (e *Engine) Export() *Export {
	raw := e.safe.Raw()
	return &Export{Nodes: raw.Vertices(), Links: raw.Edges()}
}

// parseDocument recovers the entities a canonical document declares in its
// machine-readable sections.
func parseDocument(content string) (*docEntities, error) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	m := headerPattern.FindStringSubmatch(lines[0])
	if m == nil {
		return nil, fmt.Errorf("document missing [Dream ID: N] header")
	}
	dreamID, _ := strconv.ParseInt(m[1], 10, 64)
	title := strings.TrimSpace(m[3])

	doc := &docEntities{
		DreamID: dreamID,
		Dream: Vertex{
			Name:        fmt.Sprintf("[Dream ID: %d] %s", dreamID, title),
			Kind:        "dream",
			Description: "dreamt on " + strings.TrimSpace(m[2]),
		},
	}

	seen := map[string]bool{}
	add := func(v Vertex) {
		if v.Name == "" || seen[v.Name] {
			return
		}
		seen[v.Name] = true
		doc.Entities = append(doc.Entities, v)
	}

	section := ""
	var pending *Vertex
	flush := func() {
		if pending != nil {
			add(*pending)
			pending = nil
		}
	}

	for _, raw := range lines[1:] {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, "SYMBOLS IN THIS DREAM:"):
			flush()
			section = "symbols"
		case strings.HasPrefix(line, "CHARACTERS IN THIS DREAM:"):
			flush()
			section = "characters"
		case strings.HasPrefix(line, "EMOTIONS EXPERIENCED:"):
			flush()
			section = "emotions"
		case strings.HasPrefix(line, "SETTING:"):
			flush()
			if setting := strings.TrimSpace(strings.TrimPrefix(line, "SETTING:")); setting != "" {
				add(Vertex{Name: setting, Kind: "location"})
			}
		case strings.HasPrefix(line, "THEMES:"):
			flush()
			for _, theme := range strings.Split(strings.TrimPrefix(line, "THEMES:"), "|") {
				if theme = strings.TrimSpace(theme); theme != "" {
					add(Vertex{Name: theme, Kind: "theme"})
				}
			}
		case strings.HasPrefix(line, "• SYMBOL:") && section == "symbols":
			flush()
			name := strings.TrimSpace(strings.TrimPrefix(line, "• SYMBOL:"))
			pending = &Vertex{Name: name, Kind: "symbol"}
		case strings.HasPrefix(line, "• CHARACTER:") && section == "characters":
			flush()
			name := strings.TrimSpace(strings.TrimPrefix(line, "• CHARACTER:"))
			pending = &Vertex{Name: name, Kind: "character"}
		case strings.HasPrefix(line, "Category:") && pending != nil && pending.Kind == "symbol":
			pending.Description = "category: " + strings.TrimSpace(strings.TrimPrefix(line, "Category:"))
		case strings.HasPrefix(line, "Type:") && pending != nil && pending.Kind == "character":
			pending.Description = "type: " + strings.TrimSpace(strings.TrimPrefix(line, "Type:"))
		case strings.HasPrefix(line, "ARCHETYPE:") && section == "characters":
			if archetype := strings.TrimSpace(strings.TrimPrefix(line, "ARCHETYPE:")); archetype != "" {
				add(Vertex{Name: archetype, Kind: "archetype"})
			}
		case section == "emotions":
			if m := emotionPattern.FindStringSubmatch(line); m != nil {
				add(Vertex{Name: strings.TrimSpace(m[1]), Kind: "emotion"})
			}
		}
	}
	flush()

	return doc, nil
}
