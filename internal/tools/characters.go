package tools

import (
	"context"
	"encoding/json"

	"github.com/nightjar-app/nightjar/internal/llm"
)

type characterSearchArgs struct {
	Query string `json:"query"`
}

type characterNameArgs struct {
	CharacterName string `json:"character_name"`
}

func registerCharacterTools(r *Registry, b *Binding) {
	r.Register(llm.Tool{
		Name:        "search_characters",
		Description: "Search the people and figures who appear in the dreamer's dreams.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Character name or fragment (e.g., 'mother', 'stranger'). Empty matches all.",
				},
			},
			"required": []string{"query"},
		},
	}, func(ctx context.Context, args string) Result {
		var params characterSearchArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("search_characters", "invalid arguments: "+err.Error())
		}
		characters, err := b.store().SearchCharacters(b.UserID(), params.Query)
		if err != nil {
			return Failure("search_characters", err.Error())
		}
		return Success("search_characters", map[string]any{
			"characters": characters,
			"count":      len(characters),
		})
	})

	r.Register(llm.Tool{
		Name:        "get_character_details",
		Description: "Get full details for one dream character: their type (known_person, unknown_person, self, animal, mythical, abstract), real-world relation, the archetypes they carried, and their appearances.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"character_name": map[string]any{
					"type":        "string",
					"description": "Exact or partial character name.",
				},
			},
			"required": []string{"character_name"},
		},
	}, func(ctx context.Context, args string) Result {
		var params characterNameArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("get_character_details", "invalid arguments: "+err.Error())
		}
		details, err := b.store().CharacterDetails(b.UserID(), params.CharacterName)
		if err != nil {
			return Failure("get_character_details", err.Error())
		}
		if details == nil {
			return Failure("get_character_details", "No character found matching '"+params.CharacterName+"'")
		}
		return Success("get_character_details", details)
	})

	r.Register(llm.Tool{
		Name:        "get_archetype_analysis",
		Description: "Group every archetype appearing across the journal with the characters that carried it. Use for questions about the shadow, the wise elder, the trickster, and other Jungian figures.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, func(ctx context.Context, args string) Result {
		groups, err := b.store().ArchetypeAnalysis(b.UserID())
		if err != nil {
			return Failure("get_archetype_analysis", err.Error())
		}
		return Success("get_archetype_analysis", map[string]any{
			"archetypes": groups,
			"count":      len(groups),
		})
	})
}
