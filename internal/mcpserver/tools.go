package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/tools"
)

// genericSchema is the permissive placeholder JSON Schema every tool
// advertises: the engine's own Validate()/apperr paths are the real
// gate on argument shape, so the schema only needs to satisfy clients
// that require one to be present.
var genericSchema = json.RawMessage(`{"type":"object","additionalProperties":true}`)

// svcTool adapts one of Service's operations into a registry ToolHandler.
type svcTool struct {
	name string
	desc string
	run  func(ctx context.Context, raw json.RawMessage) (*tools.Envelope, error)
}

func (t *svcTool) Name() string                   { return t.name }
func (t *svcTool) Description() string            { return t.desc }
func (t *svcTool) InputSchema() json.RawMessage   { return genericSchema }
func (t *svcTool) Execute(ctx context.Context, raw json.RawMessage) (*ToolsCallResult, error) {
	env, err := t.run(ctx, raw)
	if err != nil {
		return nil, err
	}
	return jsonResult(env)
}

// RegisterTools wires every operation of the spec's tool surface
// (§6.1) onto registry, bound to svc.
func RegisterTools(registry *Registry, svc *tools.Service) {
	registry.Register(&svcTool{
		name: "manageContainer",
		desc: "Create, read, update, transition, or delete a project, feature, or task.",
		run: func(ctx context.Context, raw json.RawMessage) (*tools.Envelope, error) {
			var p tools.ManageContainerParams
			if err := decode(raw, &p); err != nil {
				return nil, err
			}
			return svc.ManageContainer(ctx, p), nil
		},
	})

	registry.Register(&svcTool{
		name: "queryContainer",
		desc: "Read a project, feature, or task: get by id, search by filter, or a low-token overview projection.",
		run: func(ctx context.Context, raw json.RawMessage) (*tools.Envelope, error) {
			var p tools.QueryContainerParams
			if err := decode(raw, &p); err != nil {
				return nil, err
			}
			return svc.QueryContainer(ctx, p), nil
		},
	})

	registry.Register(&svcTool{
		name: "manageDependency",
		desc: "Create, delete, or list dependency edges between tasks. Create runs a cycle check before writing.",
		run: func(ctx context.Context, raw json.RawMessage) (*tools.Envelope, error) {
			var p tools.ManageDependencyParams
			if err := decode(raw, &p); err != nil {
				return nil, err
			}
			return svc.ManageDependency(ctx, p), nil
		},
	})

	registry.Register(&svcTool{
		name: "queryDependencies",
		desc: "List the dependency edges a task participates in, optionally enriched with counterpart task info.",
		run: func(ctx context.Context, raw json.RawMessage) (*tools.Envelope, error) {
			var p tools.QueryDependenciesParams
			if err := decode(raw, &p); err != nil {
				return nil, err
			}
			return svc.QueryDependencies(ctx, p), nil
		},
	})

	registry.Register(&svcTool{
		name: "getNextItem",
		desc: "Recommend the next unblocked task(s) to work on, sorted by priority, complexity, and creation order.",
		run: func(ctx context.Context, raw json.RawMessage) (*tools.Envelope, error) {
			var p tools.GetNextItemParams
			if err := decode(raw, &p); err != nil {
				return nil, err
			}
			return svc.GetNextItem(ctx, p), nil
		},
	})

	registry.Register(&svcTool{
		name: "getBlocked",
		desc: "List non-terminal tasks currently blocked by an unsatisfied dependency, with their blocker details.",
		run: func(ctx context.Context, raw json.RawMessage) (*tools.Envelope, error) {
			var p tools.GetBlockedParams
			if err := decode(raw, &p); err != nil {
				return nil, err
			}
			return svc.GetBlocked(ctx, p), nil
		},
	})

	registry.Register(&svcTool{
		name: "progress",
		desc: "Recommend the next status for an entity without writing it, including blocker/terminal diagnostics.",
		run: func(ctx context.Context, raw json.RawMessage) (*tools.Envelope, error) {
			var p tools.ProgressParams
			if err := decode(raw, &p); err != nil {
				return nil, err
			}
			return svc.Progress(ctx, p), nil
		},
	})

	registry.Register(&svcTool{
		name: "flowPath",
		desc: "Project the active flow (name, ordered statuses, current position) for a container type and tag set.",
		run: func(ctx context.Context, raw json.RawMessage) (*tools.Envelope, error) {
			var p tools.FlowPathParams
			if err := decode(raw, &p); err != nil {
				return nil, err
			}
			return svc.FlowPath(ctx, p), nil
		},
	})

	registry.Register(&svcTool{
		name: "queryHistory",
		desc: "Read the append-only role-transition audit trail recorded for an entity, oldest first.",
		run: func(ctx context.Context, raw json.RawMessage) (*tools.Envelope, error) {
			var p tools.QueryHistoryParams
			if err := decode(raw, &p); err != nil {
				return nil, err
			}
			return svc.QueryHistory(ctx, p), nil
		},
	})
}

// decode unmarshals raw tool arguments into dst, treating an absent
// arguments object as the zero value rather than an error (several
// operations, e.g. getNextItem and getBlocked, are meaningful with
// every field defaulted).
func decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding tool arguments: %w", err)
	}
	return nil
}
