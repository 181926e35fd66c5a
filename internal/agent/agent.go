package agent

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/nightjar-app/nightjar/internal/graph"
	"github.com/nightjar-app/nightjar/internal/journal"
	"github.com/nightjar-app/nightjar/internal/llm"
	"github.com/nightjar-app/nightjar/internal/logger"
	"github.com/nightjar-app/nightjar/internal/tools"
)

// Agent drives the tool-calling conversation loop for one conversation.
// The mutex serializes turns; two concurrent requests on the same
// conversation queue behind each other rather than interleave history.
type Agent struct {
	mu           sync.Mutex
	model        llm.LLM
	binding      *tools.Binding
	registry     *tools.Registry
	systemPrompt string
	history      []llm.Message
}

func New(model llm.LLM, userID int64, store *journal.Store, graphs *graph.Manager, systemPrompt string) *Agent {
	binding := tools.NewBinding(userID, store, graphs)
	registry := tools.NewRegistry()
	tools.RegisterAll(registry, binding)

	return &Agent{
		model:        model,
		binding:      binding,
		registry:     registry,
		systemPrompt: systemPrompt,
	}
}

// Rebind points the agent's tools at fresh persistence handles. Cached
// agents get rebound on every request so they never hold stale handles.
func (a *Agent) Rebind(store *journal.Store, graphs *graph.Manager) {
	a.binding.Rebind(store, graphs)
}

// ReplayHistory seeds the conversation history from persisted turns.
func (a *Agent) ReplayHistory(messages []llm.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = slices.Clone(messages)
	a.trimHistoryLocked()
}

func (a *Agent) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// Chat runs one user turn through the tool loop. It never returns an
// error: provider failures and handler panics both degrade to a fixed
// apology so the conversation survives.
func (a *Agent) Chat(ctx context.Context, text string, images []llm.ImageContent) (reply *Reply) {
	a.mu.Lock()
	defer a.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("agent turn panicked", "panic", rec)
			reply = apologyReply()
		}
	}()

	conversation := append(slices.Clone(a.history), llm.Message{
		Role:    "user",
		Content: text,
		Images:  images,
	})

	toolCalls := []ToolCallInfo{}
	sources := []graph.Source{}
	answer := ""

	for round := 1; round <= maxToolRounds; round++ {
		resp, err := a.model.ChatWithTools(ctx, a.systemPrompt, conversation, a.registry.Tools())
		if err != nil {
			logger.Error("provider call failed", "round", round, "error", err)
			return apologyReply()
		}

		answer = resp.Content
		if len(resp.ToolCalls) == 0 || round == maxToolRounds {
			break
		}

		conversation = append(conversation, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			result := a.registry.Execute(ctx, tc.Name, tc.Arguments)
			logger.Debug("tool executed", "tool", tc.Name, "ok", result.OK)

			toolCalls = append(toolCalls, ToolCallInfo{Tool: tc.Name, Args: tc.Arguments, Success: result.OK})
			if data, ok := result.Data.(tools.SemanticData); ok {
				sources = append(sources, data.Sources...)
			}

			conversation = append(conversation, llm.Message{
				Role:       "tool",
				Content:    result.Payload(),
				ToolCallID: tc.ID,
			})
		}
	}

	a.appendTurnLocked(text, len(images) > 0, answer)

	return &Reply{
		Answer:    answer,
		Sources:   sources,
		QueryType: deriveQueryType(toolCalls),
		ToolCalls: toolCalls,
	}
}

// ChatStream runs a full turn, then emits the answer to fn in small
// word chunks. Concatenating the chunks reproduces the answer with
// normalized whitespace.
func (a *Agent) ChatStream(ctx context.Context, text string, images []llm.ImageContent, fn func(chunk string)) *Reply {
	reply := a.Chat(ctx, text, images)

	words := strings.Fields(reply.Answer)
	for i := 0; i < len(words); i += streamChunkWords {
		end := min(i+streamChunkWords, len(words))
		chunk := strings.Join(words[i:end], " ")
		if end < len(words) {
			chunk += " "
		}
		fn(chunk)
	}
	return reply
}

func (a *Agent) appendTurnLocked(text string, hadImages bool, answer string) {
	if hadImages {
		text = "[Image attached] " + text
	}
	a.history = append(a.history,
		llm.Message{Role: "user", Content: text},
		llm.Message{Role: "assistant", Content: answer},
	)
	a.trimHistoryLocked()
}

func (a *Agent) trimHistoryLocked() {
	if len(a.history) > historyLimit {
		a.history = a.history[len(a.history)-historyLimit:]
	}
}

// deriveQueryType maps the tools used during a turn onto the coarse
// query categories surfaced to clients. The first recognized tool wins.
func deriveQueryType(calls []ToolCallInfo) string {
	for _, c := range calls {
		switch {
		case strings.Contains(c.Tool, "symbol"):
			return "symbol"
		case strings.Contains(c.Tool, "character"), strings.Contains(c.Tool, "archetype"):
			return "character"
		case strings.Contains(c.Tool, "emotion"):
			return "emotion"
		case strings.Contains(c.Tool, "theme"):
			return "theme"
		case strings.Contains(c.Tool, "semantic"):
			return "pattern"
		case strings.Contains(c.Tool, "dream"):
			return "general"
		}
	}
	return "conversation"
}
