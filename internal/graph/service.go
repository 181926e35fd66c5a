package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/nightjar-app/nightjar/internal/llm"
	"github.com/nightjar-app/nightjar/internal/logger"
)

const maxExcerptLen = 500

const emptyGraphResponse = "I don't have any dreams indexed yet. Please add some dreams first, then I can help you explore patterns and meanings."

const errorResponse = "I encountered an error while searching your dreams. Please try again."

var dreamIDPattern = regexp.MustCompile(`\[Dream ID:\s*(\d+)\]`)

// Service is one user's graph retrieval surface. The engine is opened
// lazily so users who never query pay nothing.
type Service struct {
	userID   int64
	dir      string
	model    llm.LLM
	embedder Embedder
	profile  Profile

	mu     sync.Mutex
	engine *Engine
}

func newService(userID int64, dir string, model llm.LLM, embedder Embedder, profile Profile) *Service {
	return &Service{
		userID:   userID,
		dir:      dir,
		model:    model,
		embedder: embedder,
		profile:  profile,
	}
}

// Exists reports whether this user has indexed storage on disk.
func (s *Service) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dir, graphFile))
	return err == nil
}

func (s *Service) openEngine() (*Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		return s.engine, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	engine, err := OpenEngine(s.dir, s.model, s.embedder, s.profile)
	if err != nil {
		return nil, err
	}
	s.engine = engine
	return engine, nil
}

// Index inserts one rendered document.
func (s *Service) Index(ctx context.Context, dreamID int64, content string) error {
	engine, err := s.openEngine()
	if err != nil {
		return err
	}
	return engine.Insert(ctx, dreamID, content)
}

// Query answers a question over the indexed journal. It never returns an
// error to the caller; failures degrade to a fixed response so the agent
// keeps its turn.
func (s *Service) Query(ctx context.Context, question string) *QueryResult {
	start := time.Now()
	queryType := ClassifyQuery(question)

	if !s.Exists() {
		return &QueryResult{
			Response:         emptyGraphResponse,
			Sources:          []Source{},
			QueryType:        "empty",
			ProcessingTimeMS: time.Since(start).Milliseconds(),
		}
	}

	engine, err := s.openEngine()
	if err != nil {
		logger.Error("graph engine unavailable", "user", s.userID, "error", err)
		return &QueryResult{
			Response:         errorResponse,
			Sources:          []Source{},
			QueryType:        "error",
			ProcessingTimeMS: time.Since(start).Milliseconds(),
		}
	}

	answer, err := engine.Query(ctx, question)
	if err != nil {
		logger.Error("graph query failed", "user", s.userID, "error", err)
		return &QueryResult{
			Response:         errorResponse,
			Sources:          []Source{},
			QueryType:        "error",
			ProcessingTimeMS: time.Since(start).Milliseconds(),
		}
	}

	return &QueryResult{
		Response:         answer.Response,
		Sources:          ExtractSources(answer.References, answer.Context),
		QueryType:        queryType,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}
}

// Clear destroys this user's graph storage and recreates the empty
// working directory.
func (s *Service) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		s.engine.Close()
		s.engine = nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("clear graph dir: %w", err)
	}
	return os.MkdirAll(s.dir, 0o755)
}

func (s *Service) Stats() (*Stats, error) {
	if !s.Exists() {
		return &Stats{}, nil
	}
	engine, err := s.openEngine()
	if err != nil {
		return nil, err
	}
	return engine.Stats()
}

func (s *Service) Export() (*Export, error) {
	if !s.Exists() {
		return &Export{Nodes: []Vertex{}, Links: []Edge{}}, nil
	}
	engine, err := s.openEngine()
	if err != nil {
		return nil, err
	}
	return engine.Export(), nil
}

// ExtractSources pulls entry IDs out of reference and context spans,
// deduplicating by entry and truncating excerpts. Reference spans win on
// collision because they carry the full document text.
func ExtractSources(references, contextSpans []string) []Source {
	sources := []Source{}
	seen := map[int64]bool{}

	for _, spans := range [][]string{references, contextSpans} {
		for _, span := range spans {
			m := dreamIDPattern.FindStringSubmatch(span)
			if m == nil {
				continue
			}
			id, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil || seen[id] {
				continue
			}
			seen[id] = true
			sources = append(sources, Source{
				DreamID: id,
				Excerpt: truncateExcerpt(span),
			})
		}
	}

	return sources
}

func truncateExcerpt(s string) string {
	if len(s) <= maxExcerptLen {
		return s
	}
	// Back off to a rune boundary so the cut never leaves invalid UTF-8.
	cut := maxExcerptLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// ClassifyQuery buckets a question by keyword. Earlier buckets win, so a
// question naming both a symbol and an emotion classifies as symbol.
func ClassifyQuery(question string) string {
	q := strings.ToLower(question)

	contains := func(keywords ...string) bool {
		for _, kw := range keywords {
			if strings.Contains(q, kw) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("symbol", "mean", "represent", "signify", "symbolize"):
		return "symbol"
	case contains("character", "person", "who", "shadow", "anima", "animus", "figure"):
		return "character"
	case contains("pattern", "recurring", "repeat", "trend", "over time", "frequency", "often"):
		return "pattern"
	case contains("emotion", "feel", "feeling", "mood", "felt", "anxiety", "fear", "joy"):
		return "emotion"
	case contains("theme", "about", "motif"):
		return "theme"
	case contains("archetype", "wise", "trickster", "hero"):
		return "archetype"
	default:
		return "general"
	}
}
