package models

import "time"

// Task is the leaf, assignable unit of work, optionally parented by a
// Feature.
type Task struct {
	ID          ID       `json:"id" db:"id"`
	FeatureID   *ID      `json:"feature_id,omitempty" db:"feature_id"`
	Slug        string   `json:"slug" db:"slug"`
	Title       string   `json:"title" db:"title"`
	Description *string  `json:"description,omitempty" db:"description"`
	Status      string   `json:"status" db:"status"`
	Priority    Priority `json:"priority" db:"priority"`

	// Complexity is an optional 1-10 effort estimate, used only as a
	// tie-break in the next-task recommendation sort.
	Complexity *int `json:"complexity,omitempty" db:"complexity"`

	// Summary is free text, required and length-gated to [300, 500]
	// characters only at the moment a task enters a terminal status.
	Summary *string `json:"summary,omitempty" db:"summary"`

	Tags []string `json:"tags" db:"tags"`

	AssignedAgent *string    `json:"assigned_agent,omitempty" db:"assigned_agent"`
	BlockedReason *string    `json:"blocked_reason,omitempty" db:"blocked_reason"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	BlockedAt     *time.Time `json:"blocked_at,omitempty" db:"blocked_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`

	CompletionMetadata *CompletionMetadata `json:"completion_metadata,omitempty" db:"completion_metadata"`
	ContextData        *ContextData        `json:"context_data,omitempty" db:"context_data"`
}

// Validate validates the structural fields of a Task. The summary-length
// gate is enforced separately by the prerequisite validator at the point
// a task is moved into a terminal status, not on every write.
func (t *Task) Validate() error {
	if err := ValidateID(t.ID); err != nil {
		return err
	}
	if t.FeatureID != nil {
		if err := ValidateID(*t.FeatureID); err != nil {
			return err
		}
	}
	if err := ValidateSlug(t.Slug); err != nil {
		return err
	}
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if t.Status == "" {
		return ErrEmptyStatus
	}
	switch t.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return ErrInvalidPriority
	}
	if t.Complexity != nil {
		if err := ValidateComplexity(*t.Complexity); err != nil {
			return err
		}
	}
	return nil
}
