package tools

import (
	"context"
	"encoding/json"

	"github.com/nightjar-app/nightjar/internal/llm"
)

type dreamSearchArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type dreamLimitArgs struct {
	Limit int `json:"limit,omitempty"`
}

type dreamIDArgs struct {
	DreamID int64 `json:"dream_id"`
}

func registerDreamTools(r *Registry, b *Binding) {
	r.Register(llm.Tool{
		Name:        "search_dreams",
		Description: "Full-text search over dream titles, narratives, and locations.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Words to search for in the dream text.",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum dreams to return. Default: 5.",
				},
			},
			"required": []string{"query"},
		},
	}, func(ctx context.Context, args string) Result {
		var params dreamSearchArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("search_dreams", "invalid arguments: "+err.Error())
		}
		dreams, err := b.store().SearchEntries(b.UserID(), params.Query, params.Limit)
		if err != nil {
			return Failure("search_dreams", err.Error())
		}
		return Success("search_dreams", map[string]any{
			"dreams": dreams,
			"count":  len(dreams),
		})
	})

	r.Register(llm.Tool{
		Name:        "get_recent_dreams",
		Description: "List the most recently recorded dreams, newest first.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum dreams to return. Default: 5.",
				},
			},
		},
	}, func(ctx context.Context, args string) Result {
		var params dreamLimitArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("get_recent_dreams", "invalid arguments: "+err.Error())
		}
		dreams, err := b.store().RecentEntries(b.UserID(), params.Limit)
		if err != nil {
			return Failure("get_recent_dreams", err.Error())
		}
		return Success("get_recent_dreams", map[string]any{
			"dreams": dreams,
			"count":  len(dreams),
		})
	})

	r.Register(llm.Tool{
		Name:        "get_dream_details",
		Description: "Get one dream in full: narrative, setting, symbols, characters, emotions, themes, and the dreamer's own interpretation.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"dream_id": map[string]any{
					"type":        "integer",
					"description": "ID of the dream, as returned by other tools.",
				},
			},
			"required": []string{"dream_id"},
		},
	}, func(ctx context.Context, args string) Result {
		var params dreamIDArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("get_dream_details", "invalid arguments: "+err.Error())
		}
		details, err := b.store().EntryDetails(b.UserID(), params.DreamID)
		if err != nil {
			return Failure("get_dream_details", err.Error())
		}
		if details == nil {
			return Failure("get_dream_details", "No dream found with that ID")
		}
		return Success("get_dream_details", details)
	})

	r.Register(llm.Tool{
		Name:        "get_recurring_dreams",
		Description: "List the dreams the dreamer marked as recurring.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, func(ctx context.Context, args string) Result {
		dreams, err := b.store().RecurringEntries(b.UserID())
		if err != nil {
			return Failure("get_recurring_dreams", err.Error())
		}
		return Success("get_recurring_dreams", map[string]any{
			"dreams": dreams,
			"count":  len(dreams),
		})
	})
}
