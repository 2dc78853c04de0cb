package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// ToolHandler is the interface every registered tool implements: a
// name, description and JSON Schema for client-side introspection, and
// an Execute method that decodes its own arguments and returns an MCP
// tool result.
type ToolHandler interface {
	Name() string
	Description() string
	InputSchema() json.RawMessage
	Execute(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error)
}

// Registry holds the tools exposed over tools/list and tools/call.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ToolHandler
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]ToolHandler)}
}

// Register adds a tool. It panics if the name is already registered —
// a duplicate tool name is a programming error caught at startup, not
// a runtime condition to recover from.
func (r *Registry) Register(t ToolHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		panic(fmt.Sprintf("tool %q already registered", name))
	}
	r.tools[name] = t
	r.order = append(r.order, name)
}

// Get returns a tool by name, or nil if unregistered.
func (r *Registry) Get(name string) ToolHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// List returns every registered tool's definition, in registration order.
func (r *Registry) List() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, ToolDefinition{Name: t.Name(), Description: t.Description(), InputSchema: t.InputSchema()})
	}
	return defs
}
