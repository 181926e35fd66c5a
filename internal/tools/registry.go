package tools

import (
	"context"
	"fmt"

	"github.com/nightjar-app/nightjar/internal/llm"
	"github.com/nightjar-app/nightjar/internal/logger"
)

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

func (r *Registry) Register(tool llm.Tool, handler Handler) {
	r.tools = append(r.tools, tool)
	r.handlers[tool.Name] = handler
}

func (r *Registry) Tools() []llm.Tool {
	return r.tools
}

// Execute runs the named tool. The model controls the name and the
// arguments, so neither an unknown name nor a panicking handler may take
// down the conversation turn: both come back as failure Results.
func (r *Registry) Execute(ctx context.Context, name, args string) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("tool handler panicked", "tool", name, "panic", rec)
			result = Failure(name, fmt.Sprintf("tool %s failed unexpectedly", name))
		}
	}()

	handler, ok := r.handlers[name]
	if !ok {
		return Failure(name, "Unknown tool: "+name)
	}
	return handler(ctx, args)
}
