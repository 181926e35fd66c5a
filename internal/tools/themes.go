package tools

import (
	"context"
	"encoding/json"

	"github.com/nightjar-app/nightjar/internal/llm"
)

type themeArgs struct {
	Theme string `json:"theme"`
	Limit int    `json:"limit,omitempty"`
}

func registerThemeTools(r *Registry, b *Binding) {
	r.Register(llm.Tool{
		Name:        "get_themes_overview",
		Description: "List every theme across the journal, most frequent first.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, func(ctx context.Context, args string) Result {
		themes, err := b.store().ThemesOverview(b.UserID())
		if err != nil {
			return Failure("get_themes_overview", err.Error())
		}
		return Success("get_themes_overview", map[string]any{
			"themes": themes,
			"count":  len(themes),
		})
	})

	r.Register(llm.Tool{
		Name:        "get_theme_dreams",
		Description: "List the dreams carrying a given theme, newest first.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"theme": map[string]any{
					"type":        "string",
					"description": "Theme to look up (e.g., 'being chased', 'loss of control').",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum dreams to return. Default: 5.",
				},
			},
			"required": []string{"theme"},
		},
	}, func(ctx context.Context, args string) Result {
		var params themeArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("get_theme_dreams", "invalid arguments: "+err.Error())
		}
		dreams, err := b.store().ThemeEntries(b.UserID(), params.Theme, params.Limit)
		if err != nil {
			return Failure("get_theme_dreams", err.Error())
		}
		return Success("get_theme_dreams", map[string]any{
			"theme":  params.Theme,
			"dreams": dreams,
			"count":  len(dreams),
		})
	})

	r.Register(llm.Tool{
		Name:        "get_theme_analysis",
		Description: "Analyze one theme over time: how often it appears, when it first and last showed up, and the emotions and symbols that travel with it.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"theme": map[string]any{
					"type":        "string",
					"description": "Theme to analyze.",
				},
			},
			"required": []string{"theme"},
		},
	}, func(ctx context.Context, args string) Result {
		var params themeArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("get_theme_analysis", "invalid arguments: "+err.Error())
		}
		analysis, err := b.store().ThemeAnalysis(b.UserID(), params.Theme)
		if err != nil {
			return Failure("get_theme_analysis", err.Error())
		}
		if analysis == nil {
			return Failure("get_theme_analysis", "No theme found matching '"+params.Theme+"'")
		}
		return Success("get_theme_analysis", analysis)
	})
}
