package tools

import (
	"context"
	"encoding/json"

	"github.com/nightjar-app/nightjar/internal/graph"
	"github.com/nightjar-app/nightjar/internal/llm"
)

type semanticSearchArgs struct {
	Question string `json:"question"`
}

// SemanticData is the payload shape of a semantic_search success. The
// agent inspects it to surface source dreams alongside the answer.
type SemanticData struct {
	Response  string         `json:"response"`
	Sources   []graph.Source `json:"sources"`
	QueryType string         `json:"query_type"`
}

func registerGeneralTools(r *Registry, b *Binding) {
	r.Register(llm.Tool{
		Name:        "semantic_search",
		Description: "Ask an open-ended question over the whole journal using the dream knowledge graph. Use this for interpretive questions that the structured tools cannot answer, like 'what do my dreams say about change?'.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "Natural-language question to ask over the journal.",
				},
			},
			"required": []string{"question"},
		},
	}, func(ctx context.Context, args string) Result {
		var params semanticSearchArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("semantic_search", "invalid arguments: "+err.Error())
		}
		svc := b.graph()
		if !svc.Exists() {
			return Failure("semantic_search", "No dreams have been indexed yet. Cannot perform semantic search.")
		}
		result := svc.Query(ctx, params.Question)
		return Success("semantic_search", SemanticData{
			Response:  result.Response,
			Sources:   result.Sources,
			QueryType: result.QueryType,
		})
	})

	r.Register(llm.Tool{
		Name:        "get_journal_summary",
		Description: "High-level statistics for the whole journal: dream count, date range, lucid and recurring counts, top symbols, characters, emotions, and themes.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, func(ctx context.Context, args string) Result {
		summary, err := b.store().JournalSummary(b.UserID())
		if err != nil {
			return Failure("get_journal_summary", err.Error())
		}
		return Success("get_journal_summary", summary)
	})
}
