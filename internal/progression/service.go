// Package progression implements the progression service (C5): it
// recommends the next status for an entity, answers readiness queries
// against a caller-supplied target, and projects the active flow for
// UI/diagnostic rendering.
package progression

import (
	"context"

	"github.com/vantage-labs/orcaflow/internal/flow"
	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/prereq"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// ResultKind tags the three shapes a progression recommendation can
// take.
type ResultKind int

const (
	KindReady ResultKind = iota
	KindBlocked
	KindTerminal
)

// Result is the tagged-variant outcome of NextStatus.
type Result struct {
	Kind          ResultKind
	Current       string
	Recommended   string
	FlowName      string
	Sequence      []string
	Position      int
	MatchedTags   []string
	Reason        string
	BlockerReason string
}

// Service is the progression service (C5).
type Service struct {
	resolver  *flow.Resolver
	validator *prereq.Validator
}

// New constructs a Service bound to a loaded config snapshot and the
// validator it delegates transition-legality checks to.
func New(cfg *workflowconfig.WorkflowConfig, validator *prereq.Validator) *Service {
	return &Service{resolver: flow.New(cfg), validator: validator}
}

// NextStatus resolves the active flow, locates current's position, and
// proposes the following status in sequence, delegating to the
// prerequisite validator to confirm the proposed transition is legal.
func (s *Service) NextStatus(ctx context.Context, containerType workflowconfig.ContainerType, entityID *models.ID, tags []string, current string) (*Result, error) {
	flowName, sequence, matched := s.resolver.ActiveFlow(containerType, tags)
	pos := flow.Position(sequence, current)

	if s.resolver.IsTerminal(containerType, current) || pos < 0 || pos == len(sequence)-1 {
		return &Result{
			Kind:        KindTerminal,
			Current:     current,
			FlowName:    flowName,
			Sequence:    sequence,
			Position:    pos,
			MatchedTags: matched,
			Reason:      "entity is at the end of its active flow or already terminal",
		}, nil
	}

	proposed := sequence[pos+1]
	res, err := s.validator.Validate(ctx, prereq.Request{
		ContainerType: containerType,
		EntityID:      entityID,
		Tags:          tags,
		CurrentStatus: current,
		NewStatus:     proposed,
	})
	if err != nil {
		return nil, err
	}

	if res.Outcome == prereq.Invalid {
		return &Result{
			Kind:          KindBlocked,
			Current:       current,
			FlowName:      flowName,
			Sequence:      sequence,
			Position:      pos,
			MatchedTags:   matched,
			BlockerReason: res.Reason,
		}, nil
	}

	reason := "next step in the active flow"
	if res.Outcome == prereq.ValidWithAdvisory {
		reason = res.Advisory
	}
	return &Result{
		Kind:        KindReady,
		Current:     current,
		Recommended: proposed,
		FlowName:    flowName,
		Sequence:    sequence,
		Position:    pos,
		MatchedTags: matched,
		Reason:      reason,
	}, nil
}

// Readiness differs from NextStatus only in that the target status is
// supplied by the caller rather than computed from flow position.
func (s *Service) Readiness(ctx context.Context, containerType workflowconfig.ContainerType, entityID *models.ID, tags []string, current, target string) (*prereq.Result, error) {
	return s.validator.Validate(ctx, prereq.Request{
		ContainerType: containerType,
		EntityID:      entityID,
		Tags:          tags,
		CurrentStatus: current,
		NewStatus:     target,
	})
}

// FlowPath is a pure projection of the flow resolver's output, used by
// UIs to render overall progress through the active flow.
type FlowPath struct {
	FlowName    string
	Sequence    []string
	Position    int
	MatchedTags []string
}

// FlowPath resolves the active flow for containerType/tags and locates
// current within it (position is -1 if current is absent or omitted).
func (s *Service) FlowPath(containerType workflowconfig.ContainerType, tags []string, current *string) FlowPath {
	flowName, sequence, matched := s.resolver.ActiveFlow(containerType, tags)
	pos := -1
	if current != nil {
		pos = flow.Position(sequence, *current)
	}
	return FlowPath{FlowName: flowName, Sequence: sequence, Position: pos, MatchedTags: matched}
}
