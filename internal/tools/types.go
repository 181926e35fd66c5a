package tools

import (
	"context"
	"encoding/json"

	"github.com/nightjar-app/nightjar/internal/llm"
)

// Handler executes one tool call. Handlers report failures inside the
// Result; they never return Go errors to the dispatch loop.
type Handler func(ctx context.Context, args string) Result

type Registry struct {
	tools    []llm.Tool
	handlers map[string]Handler
}

// Result is the uniform outcome of a tool call, successful or not.
type Result struct {
	OK   bool
	Tool string
	Data any
	Err  string
}

func Success(tool string, data any) Result {
	return Result{OK: true, Tool: tool, Data: data}
}

func Failure(tool, msg string) Result {
	return Result{OK: false, Tool: tool, Err: msg}
}

type resultPayload struct {
	Status string `json:"status"`
	Tool   string `json:"tool"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Payload renders the model-facing JSON for this result.
func (r Result) Payload() string {
	p := resultPayload{Tool: r.Tool}
	if r.OK {
		p.Status = "success"
		p.Data = r.Data
	} else {
		p.Status = "error"
		p.Error = r.Err
	}
	out, err := json.Marshal(p)
	if err != nil {
		return `{"status":"error","tool":"` + r.Tool + `","error":"unserializable result"}`
	}
	return string(out)
}
