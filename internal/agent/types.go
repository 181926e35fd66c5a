package agent

import (
	"github.com/nightjar-app/nightjar/internal/graph"
)

const (
	// maxToolRounds bounds the provider exchanges within one user turn. A
	// model that keeps requesting tools gets its round-limit response
	// returned as-is.
	maxToolRounds = 5

	// historyLimit caps the per-conversation message history carried
	// between turns.
	historyLimit = 20

	streamChunkWords = 3
)

const apologyMessage = "I apologize, but I encountered an issue processing your request. Could you please try rephrasing your question?"

// ToolCallInfo records one tool invocation made during a turn.
type ToolCallInfo struct {
	Tool    string `json:"tool"`
	Args    string `json:"args"`
	Success bool   `json:"success"`
}

// Reply is the outcome of one user turn.
type Reply struct {
	Answer    string
	Sources   []graph.Source
	QueryType string
	ToolCalls []ToolCallInfo
}

func apologyReply() *Reply {
	return &Reply{
		Answer:    apologyMessage,
		Sources:   []graph.Source{},
		QueryType: "error",
		ToolCalls: []ToolCallInfo{},
	}
}
