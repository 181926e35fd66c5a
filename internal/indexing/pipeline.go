package indexing

import (
	"context"
	"fmt"

	"github.com/nightjar-app/nightjar/internal/graph"
	"github.com/nightjar-app/nightjar/internal/journal"
	"github.com/nightjar-app/nightjar/internal/logger"
)

// Indexer is one user's graph insertion surface.
type Indexer interface {
	Index(ctx context.Context, dreamID int64, content string) error
	Clear() error
}

// Outcome reports one indexing run. FailureCount covers both entries that
// failed to render and entries whose insert failed.
type Outcome struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors"`
	IndexedIDs   []int64  `json:"indexed_ids"`
}

// Pipeline renders entries into canonical documents and feeds them to the
// per-user graph indexer, one at a time. After every successful insert it
// durably marks the entry indexed, so a crash loses at most the item in
// flight and a rerun picks up where it stopped.
type Pipeline struct {
	journal *journal.Store
	forUser func(userID int64) Indexer
}

func NewPipeline(store *journal.Store, graphs *graph.Manager) *Pipeline {
	return &Pipeline{
		journal: store,
		forUser: func(userID int64) Indexer { return graphs.ForUser(userID) },
	}
}

// IndexPending indexes every entry not yet marked indexed.
func (p *Pipeline) IndexPending(ctx context.Context, userID int64) (*Outcome, error) {
	ids, err := p.journal.UnindexedIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("list pending entries: %w", err)
	}
	return p.run(ctx, userID, ids)
}

// ReindexAll destroys the user's graph storage, resets the indexed flags,
// and indexes the whole journal from scratch.
func (p *Pipeline) ReindexAll(ctx context.Context, userID int64) (*Outcome, error) {
	if err := p.forUser(userID).Clear(); err != nil {
		return nil, fmt.Errorf("clear graph: %w", err)
	}
	if err := p.journal.ResetIndexed(userID); err != nil {
		return nil, fmt.Errorf("reset indexed flags: %w", err)
	}

	ids, err := p.journal.AllIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return p.run(ctx, userID, ids)
}

type renderedDoc struct {
	id      int64
	content string
}

func (p *Pipeline) run(ctx context.Context, userID int64, ids []int64) (*Outcome, error) {
	outcome := &Outcome{Errors: []string{}, IndexedIDs: []int64{}}

	// Render everything first: an unrenderable entry is reported without
	// costing any graph work.
	var docs []renderedDoc
	for _, id := range ids {
		bundle, err := p.journal.EntryBundle(userID, id)
		if err == nil && bundle == nil {
			err = fmt.Errorf("entry not found")
		}
		var content string
		if err == nil {
			content, err = Render(bundle)
		}
		if err != nil {
			outcome.FailureCount++
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("Dream %d: %v", id, err))
			logger.Warn("entry failed to render", "user", userID, "entry", id, "error", err)
			continue
		}
		docs = append(docs, renderedDoc{id: id, content: content})
	}

	// Inserts are strictly sequential: the graph grows incrementally and
	// concurrent inserts would race on vertex indices.
	indexer := p.forUser(userID)
	for _, doc := range docs {
		if err := indexer.Index(ctx, doc.id, doc.content); err != nil {
			outcome.FailureCount++
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("Dream %d: %v", doc.id, err))
			logger.Error("entry failed to index", "user", userID, "entry", doc.id, "error", err)
			continue
		}

		outcome.SuccessCount++
		outcome.IndexedIDs = append(outcome.IndexedIDs, doc.id)

		if err := p.journal.MarkIndexed(doc.id); err != nil {
			// the entry will be redundantly re-indexed next run
			logger.Warn("failed to mark entry indexed", "entry", doc.id, "error", err)
		}
	}

	logger.Info("indexing run finished", "user", userID,
		"indexed", outcome.SuccessCount, "failed", outcome.FailureCount)
	return outcome, nil
}
