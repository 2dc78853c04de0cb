package models

import "time"

// Feature is a mid-level grouping of tasks, optionally parented by a
// Project.
type Feature struct {
	ID          ID        `json:"id" db:"id"`
	ProjectID   *ID       `json:"project_id,omitempty" db:"project_id"`
	Slug        string    `json:"slug" db:"slug"`
	Name        string    `json:"name" db:"name"`
	Summary     *string   `json:"summary,omitempty" db:"summary"`
	Description *string   `json:"description,omitempty" db:"description"`
	Status      string    `json:"status" db:"status"`
	Priority    Priority  `json:"priority" db:"priority"`
	Tags        []string  `json:"tags" db:"tags"`

	// RequiresVerification blocks any automatic cascade into a terminal
	// status for this feature; only an explicit user-triggered
	// completion may terminate it.
	RequiresVerification bool `json:"requires_verification" db:"requires_verification"`

	// ProgressPct is a derived read-side projection (fraction of child
	// tasks in a terminal role), never an input to a status decision.
	ProgressPct float64 `json:"progress_pct" db:"progress_pct"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate validates the structural fields of a Feature.
func (f *Feature) Validate() error {
	if err := ValidateID(f.ID); err != nil {
		return err
	}
	if f.ProjectID != nil {
		if err := ValidateID(*f.ProjectID); err != nil {
			return err
		}
	}
	if err := ValidateSlug(f.Slug); err != nil {
		return err
	}
	if f.Name == "" {
		return ErrEmptyTitle
	}
	if f.Status == "" {
		return ErrEmptyStatus
	}
	switch f.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return ErrInvalidPriority
	}
	if f.ProgressPct < 0.0 || f.ProgressPct > 100.0 {
		return ErrInvalidProgressPct
	}
	return nil
}
