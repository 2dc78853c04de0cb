package flow

import (
	"strings"

	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// Resolver is the flow resolver (C3): given a container type, the
// entity's tags, and its current status, it answers which flow applies,
// where the entity sits in it, and what role that status maps to.
type Resolver struct {
	cfg *workflowconfig.WorkflowConfig
}

// New constructs a Resolver bound to a loaded workflow config snapshot.
func New(cfg *workflowconfig.WorkflowConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// ActiveFlow resolves the flow an entity with the given tags uses: the
// first flow_mappings entry (in declaration order) whose tag set shares
// any tag (case-insensitive) with the entity's tags; default_flow
// otherwise. matchedTags preserves the original casing of the entity's
// tags that triggered the match, for diagnostics only.
func (r *Resolver) ActiveFlow(containerType workflowconfig.ContainerType, tags []string) (flowName string, sequence []string, matchedTags []string) {
	flows := r.cfg.For(containerType)
	lowerTags := make(map[string]string, len(tags)) // lower -> original
	for _, t := range tags {
		lowerTags[strings.ToLower(t)] = t
	}

	for _, mapping := range flows.FlowMappings {
		var matched []string
		for _, mt := range mapping.Tags {
			if original, ok := lowerTags[strings.ToLower(mt)]; ok {
				matched = append(matched, original)
			}
		}
		if len(matched) > 0 {
			seq, ok := flows.NamedFlow(mapping.Flow)
			if ok {
				return mapping.Flow, seq, matched
			}
		}
	}
	return "default_flow", flows.DefaultFlow, nil
}

// normalizeStatus folds case and the `_`/`-` separator distinction so
// status comparisons are forgiving of either spelling.
func normalizeStatus(status string) string {
	return workflowconfig.NormalizeStatus(status)
}

// Position returns the index of currentStatus within sequence, or -1 if
// it is not present.
func Position(sequence []string, currentStatus string) int {
	target := normalizeStatus(currentStatus)
	for i, s := range sequence {
		if normalizeStatus(s) == target {
			return i
		}
	}
	return -1
}

// TerminalSet returns the configured terminal statuses for a container
// type, normalized.
func (r *Resolver) TerminalSet(containerType workflowconfig.ContainerType) map[string]bool {
	flows := r.cfg.For(containerType)
	set := make(map[string]bool, len(flows.TerminalStatuses))
	for _, s := range flows.TerminalStatuses {
		set[normalizeStatus(s)] = true
	}
	return set
}

// IsTerminal reports whether status is in the container type's terminal
// set.
func (r *Resolver) IsTerminal(containerType workflowconfig.ContainerType, status string) bool {
	return r.TerminalSet(containerType)[normalizeStatus(status)]
}

// EmergencyTransitions returns the set of statuses reachable from any
// status via an emergency transition, regardless of flow position.
func (r *Resolver) EmergencyTransitions(containerType workflowconfig.ContainerType) map[string]bool {
	flows := r.cfg.For(containerType)
	set := make(map[string]bool, len(flows.EmergencyTransitions))
	for _, s := range flows.EmergencyTransitions {
		set[normalizeStatus(s)] = true
	}
	return set
}

// Role maps a status to its coarse role. The mapping is derived from the
// status's position in the active flow and from the terminal set:
//   - terminal set membership -> RoleTerminal
//   - "blocked"-named status (normalized) -> RoleBlocked, since blocked
//     is orthogonal to flow position and is never itself a flow member
//     in the default config, but user config may place it in a flow
//   - otherwise, position among the flow's non-terminal statuses: the
//     first (or a status not in the flow) -> RoleQueue, the last ->
//     RoleReview, every status between -> RoleWork
//
// This position-based inference is what spec.md's open question flags
// as ambiguous relative to an explicit per-status role tag; orcaflow
// takes the position-inferred interpretation and documents the decision
// rather than guessing at an unspecified config key.
func (r *Resolver) Role(containerType workflowconfig.ContainerType, tags []string, status string) models.Role {
	norm := normalizeStatus(status)
	if norm == "blocked" {
		return models.RoleBlocked
	}
	if r.IsTerminal(containerType, status) {
		return models.RoleTerminal
	}

	_, sequence, _ := r.ActiveFlow(containerType, tags)

	// Exclude terminal-classified entries from the sequence used for
	// role banding so a short flow like [pending, done] still has a
	// meaningful non-terminal span.
	terminal := r.TerminalSet(containerType)
	nonTerminal := make([]string, 0, len(sequence))
	for _, s := range sequence {
		if !terminal[normalizeStatus(s)] {
			nonTerminal = append(nonTerminal, s)
		}
	}
	pos := Position(nonTerminal, status)
	switch {
	case pos < 0:
		return models.RoleQueue
	case pos == 0:
		return models.RoleQueue
	case pos == len(nonTerminal)-1:
		return models.RoleReview
	default:
		return models.RoleWork
	}
}
