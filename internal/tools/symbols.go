package tools

import (
	"context"
	"encoding/json"

	"github.com/nightjar-app/nightjar/internal/llm"
)

type symbolSearchArgs struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
}

type symbolNameArgs struct {
	SymbolName string `json:"symbol_name"`
}

type symbolDreamsArgs struct {
	SymbolName string `json:"symbol_name"`
	Limit      int    `json:"limit,omitempty"`
}

func registerSymbolTools(r *Registry, b *Binding) {
	r.Register(llm.Tool{
		Name:        "search_symbols",
		Description: "Search the dreamer's symbols by name, optionally filtered by category. Use this to find which symbols exist before asking for details.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Symbol name or fragment to search for (e.g., 'water', 'door'). Empty matches all.",
				},
				"category": map[string]any{
					"type":        "string",
					"enum":        []string{"object", "place", "action", "animal", "nature", "body", "other"},
					"description": "Optional category filter.",
				},
			},
			"required": []string{"query"},
		},
	}, func(ctx context.Context, args string) Result {
		var params symbolSearchArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("search_symbols", "invalid arguments: "+err.Error())
		}
		symbols, err := b.store().SearchSymbols(b.UserID(), params.Query, params.Category)
		if err != nil {
			return Failure("search_symbols", err.Error())
		}
		return Success("search_symbols", map[string]any{
			"symbols": symbols,
			"count":   len(symbols),
		})
	})

	r.Register(llm.Tool{
		Name:        "get_symbol_details",
		Description: "Get full details for one symbol: its category, universal meaning, the dreamer's personal associations, and its recent appearances.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"symbol_name": map[string]any{
					"type":        "string",
					"description": "Exact or partial symbol name.",
				},
			},
			"required": []string{"symbol_name"},
		},
	}, func(ctx context.Context, args string) Result {
		var params symbolNameArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("get_symbol_details", "invalid arguments: "+err.Error())
		}
		details, err := b.store().SymbolDetails(b.UserID(), params.SymbolName)
		if err != nil {
			return Failure("get_symbol_details", err.Error())
		}
		if details == nil {
			return Failure("get_symbol_details", "No symbol found matching '"+params.SymbolName+"'")
		}
		return Success("get_symbol_details", details)
	})

	r.Register(llm.Tool{
		Name:        "get_symbol_dreams",
		Description: "List the dreams a symbol appeared in, newest first.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"symbol_name": map[string]any{
					"type":        "string",
					"description": "Symbol to look up.",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum dreams to return. Default: 5.",
				},
			},
			"required": []string{"symbol_name"},
		},
	}, func(ctx context.Context, args string) Result {
		var params symbolDreamsArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("get_symbol_dreams", "invalid arguments: "+err.Error())
		}
		dreams, err := b.store().SymbolEntries(b.UserID(), params.SymbolName, params.Limit)
		if err != nil {
			return Failure("get_symbol_dreams", err.Error())
		}
		return Success("get_symbol_dreams", map[string]any{
			"symbol": params.SymbolName,
			"dreams": dreams,
			"count":  len(dreams),
		})
	})

	r.Register(llm.Tool{
		Name:        "get_symbol_patterns",
		Description: "Analyze how a symbol relates to the rest of the journal: which symbols it co-occurs with, and which emotions and themes accompany it.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"symbol_name": map[string]any{
					"type":        "string",
					"description": "Symbol to analyze.",
				},
			},
			"required": []string{"symbol_name"},
		},
	}, func(ctx context.Context, args string) Result {
		var params symbolNameArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("get_symbol_patterns", "invalid arguments: "+err.Error())
		}
		patterns, err := b.store().SymbolPatterns(b.UserID(), params.SymbolName)
		if err != nil {
			return Failure("get_symbol_patterns", err.Error())
		}
		if patterns == nil {
			return Failure("get_symbol_patterns", "No symbol found matching '"+params.SymbolName+"'")
		}
		return Success("get_symbol_patterns", patterns)
	})
}
