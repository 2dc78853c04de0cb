// Package prereq implements the prerequisite validator (C4): the
// authoritative write-time gate deciding whether a status transition is
// legal, both structurally (is the target status reachable in the
// active flow) and in terms of domain prerequisites (children complete,
// summary present, dependencies satisfied).
package prereq

import (
	"context"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/flow"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/store"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// Outcome tags the three possible shapes a validation result can take.
type Outcome int

const (
	Valid Outcome = iota
	ValidWithAdvisory
	Invalid
)

// Result is the tagged-variant outcome of a validation call, returned
// explicitly rather than via a thrown exception.
type Result struct {
	Outcome     Outcome
	Advisory    string
	Reason      string
	Suggestions []string
}

func valid() *Result { return &Result{Outcome: Valid} }

func advisory(msg string) *Result {
	return &Result{Outcome: ValidWithAdvisory, Advisory: msg}
}

func invalid(reason string, suggestions ...string) *Result {
	return &Result{Outcome: Invalid, Reason: reason, Suggestions: suggestions}
}

// Validator is the prerequisite validator (C4).
type Validator struct {
	resolver *flow.Resolver
	cfg      *workflowconfig.WorkflowConfig
	store    store.Store
}

// New constructs a Validator bound to a loaded config snapshot and the
// entity store it needs for structural lookups (children, dependencies).
func New(cfg *workflowconfig.WorkflowConfig, s store.Store) *Validator {
	return &Validator{resolver: flow.New(cfg), cfg: cfg, store: s}
}

// Request bundles a validation call's arguments. Manual is true when
// the transition was directly requested by the caller (a tool
// invocation), false when proposed by the cascade engine — the
// distinction matters only for the requiresVerification gate on
// features, which suppresses automatic-but-not-manual entry into a
// terminal status.
type Request struct {
	ContainerType workflowconfig.ContainerType
	EntityID      *models.ID
	Tags          []string
	CurrentStatus string
	NewStatus     string
	Manual        bool
}

// Validate runs the ordered gate list from current to newStatus for the
// given container type and (if applicable) entity.
func (v *Validator) Validate(ctx context.Context, req Request) (*Result, error) {
	containerType, tags, currentStatus, newStatus := req.ContainerType, req.Tags, req.CurrentStatus, req.NewStatus
	entityID := req.EntityID
	flows := v.cfg.For(containerType)
	_, sequence, _ := v.resolver.ActiveFlow(containerType, tags)
	emergency := v.resolver.EmergencyTransitions(containerType)
	normNew := workflowconfig.NormalizeStatus(newStatus)

	// 1. Structural: newStatus must be in the active flow or be an
	// emergency transition.
	newPos := flow.Position(sequence, newStatus)
	if newPos < 0 && !emergency[normNew] {
		return invalid(fmt.Sprintf("status %q is not part of the active flow and is not an emergency transition", newStatus),
			fmt.Sprintf("valid statuses: %v", sequence)), nil
	}

	// 2. Terminal gate: once terminal, only emergency transitions leave.
	if v.resolver.IsTerminal(containerType, currentStatus) && !emergency[normNew] {
		return invalid(fmt.Sprintf("status %q is terminal; only emergency transitions may leave it", currentStatus)), nil
	}

	// 3. Direction: backward movement requires the container's
	// allow_backward opt-in, unless the move is an emergency transition
	// or currentStatus isn't itself positioned in the active flow (e.g.
	// entering from an emergency status).
	curPos := flow.Position(sequence, currentStatus)
	if curPos >= 0 && newPos >= 0 && newPos < curPos && !flows.AllowBackward && !emergency[normNew] {
		return invalid(fmt.Sprintf("backward movement from %q to %q is not permitted by this flow", currentStatus, newStatus),
			"set allow_backward: true on this container's flow config to permit this"), nil
	}
	switch containerType {
	case workflowconfig.ContainerFeature:
		return v.validateFeature(ctx, entityID, tags, currentStatus, newStatus, req.Manual)
	case workflowconfig.ContainerTask:
		return v.validateTask(ctx, entityID, currentStatus, newStatus)
	default:
		return valid(), nil
	}
}
