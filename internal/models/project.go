package models

import "time"

// Priority is the coarse priority band shared by features and tasks.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// PriorityRank gives the ascending sort weight used by the next-task
// recommender: HIGH sorts first.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Project is the top-level container. It owns Features, which own Tasks.
type Project struct {
	ID        ID        `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Name      string    `json:"name" db:"name"`
	Summary   *string   `json:"summary,omitempty" db:"summary"`
	Status    string    `json:"status" db:"status"`
	Tags      []string  `json:"tags" db:"tags"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate validates the structural (non-workflow) fields of a Project.
// Status validity against the configured flow is checked separately by
// the flow resolver, which needs the loaded workflow config to do so.
func (p *Project) Validate() error {
	if err := ValidateID(p.ID); err != nil {
		return err
	}
	if err := ValidateSlug(p.Slug); err != nil {
		return err
	}
	if p.Name == "" {
		return ErrEmptyTitle
	}
	if p.Status == "" {
		return ErrEmptyStatus
	}
	return nil
}
