package tools

import (
	"context"
	"encoding/json"

	"github.com/nightjar-app/nightjar/internal/llm"
)

type emotionArgs struct {
	Emotion string `json:"emotion"`
	Limit   int    `json:"limit,omitempty"`
}

func registerEmotionTools(r *Registry, b *Binding) {
	r.Register(llm.Tool{
		Name:        "get_emotion_overview",
		Description: "Summarize every emotion recorded across the journal with how often it appears and its average intensity.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, func(ctx context.Context, args string) Result {
		overview, err := b.store().EmotionOverview(b.UserID())
		if err != nil {
			return Failure("get_emotion_overview", err.Error())
		}
		return Success("get_emotion_overview", map[string]any{
			"emotions": overview,
			"count":    len(overview),
		})
	})

	r.Register(llm.Tool{
		Name:        "get_emotion_dreams",
		Description: "List the dreams where a given emotion was felt, newest first.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"emotion": map[string]any{
					"type":        "string",
					"description": "Emotion to look up (e.g., 'fear', 'joy').",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum dreams to return. Default: 5.",
				},
			},
			"required": []string{"emotion"},
		},
	}, func(ctx context.Context, args string) Result {
		var params emotionArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("get_emotion_dreams", "invalid arguments: "+err.Error())
		}
		dreams, err := b.store().EmotionEntries(b.UserID(), params.Emotion, params.Limit)
		if err != nil {
			return Failure("get_emotion_dreams", err.Error())
		}
		return Success("get_emotion_dreams", map[string]any{
			"emotion": params.Emotion,
			"dreams":  dreams,
			"count":   len(dreams),
		})
	})

	r.Register(llm.Tool{
		Name:        "get_emotion_correlations",
		Description: "Find what accompanies an emotion: the other emotions, symbols, and themes that show up in the same dreams.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"emotion": map[string]any{
					"type":        "string",
					"description": "Emotion to correlate.",
				},
			},
			"required": []string{"emotion"},
		},
	}, func(ctx context.Context, args string) Result {
		var params emotionArgs
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return Failure("get_emotion_correlations", "invalid arguments: "+err.Error())
		}
		correlations, err := b.store().EmotionCorrelations(b.UserID(), params.Emotion)
		if err != nil {
			return Failure("get_emotion_correlations", err.Error())
		}
		return Success("get_emotion_correlations", correlations)
	})
}
