package models

import (
	"errors"
	"fmt"
	"regexp"
)

// Validation errors shared across entity types.
var (
	ErrInvalidSlug          = errors.New("invalid slug format: must match ^[a-z0-9]+(-[a-z0-9]+)*$")
	ErrEmptyTitle           = errors.New("title cannot be empty")
	ErrEmptyStatus          = errors.New("status cannot be empty")
	ErrInvalidPriority      = errors.New("invalid priority: must be HIGH, MEDIUM, or LOW")
	ErrInvalidComplexity    = errors.New("invalid complexity: must be between 1 and 10")
	ErrInvalidProgressPct   = errors.New("invalid progress_pct: must be between 0.0 and 100.0")
	ErrInvalidSummaryLength = errors.New("summary must be between 300 and 500 characters")
	ErrInvalidID            = errors.New("id must not be the zero UUID")
	ErrSelfDependency       = errors.New("a task cannot depend on itself")
	ErrCircularDependency   = errors.New("circular dependency detected")
	ErrInvalidRelationKind  = errors.New("invalid relationship kind: must be BLOCKS, IS_BLOCKED_BY, or RELATES_TO")
	ErrInvalidUnblockAt     = errors.New("invalid unblockAt: must be queue, work, review, terminal, or empty")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateSlug validates the human-facing display slug shared by every
// container type (project/feature/task).
func ValidateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: got %q", ErrInvalidSlug, slug)
	}
	return nil
}

// ValidateID rejects the zero-value UUID, which is never a legitimate
// entity identifier in this system.
func ValidateID(id ID) error {
	if id == (ID{}) {
		return ErrInvalidID
	}
	return nil
}

// ValidateComplexity validates the optional 1-10 complexity estimate.
func ValidateComplexity(complexity int) error {
	if complexity < 1 || complexity > 10 {
		return ErrInvalidComplexity
	}
	return nil
}

// ValidateSummaryLength enforces the completion-summary gate: a task may
// not be marked complete with a summary outside [300, 500] characters.
func ValidateSummaryLength(summary string) error {
	n := len(summary)
	if n < 300 || n > 500 {
		return fmt.Errorf("%w: got %d characters", ErrInvalidSummaryLength, n)
	}
	return nil
}

// ValidateRelationshipKind validates the dependency edge kind.
func ValidateRelationshipKind(kind RelationshipKind) error {
	switch kind {
	case RelationshipBlocks, RelationshipIsBlockedBy, RelationshipRelatesTo:
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidRelationKind, kind)
	}
}

// ValidateUnblockAt validates the optional per-edge unblock threshold.
func ValidateUnblockAt(role Role) error {
	if role == "" {
		return nil
	}
	switch role {
	case RoleQueue, RoleWork, RoleReview, RoleTerminal:
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidUnblockAt, role)
	}
}
