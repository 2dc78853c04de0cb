package tools

import (
	"context"

	"github.com/vantage-labs/orcaflow/internal/models"
	"github.com/vantage-labs/orcaflow/internal/nexttask"
	"github.com/vantage-labs/orcaflow/internal/progression"
)

// GetNextItemParams bundles getNextItem's filter and shaping fields.
type GetNextItemParams struct {
	ProjectID *string `json:"projectId,omitempty"`
	FeatureID *string `json:"featureId,omitempty"`
	// Limit is nil when the caller omits it (defaults to
	// nexttask.DefaultLimit); an explicit 0 is a validation error per
	// the spec's boundary rule, which Limit==nil alone can't express
	// with a bare int.
	Limit  *int `json:"limit,omitempty"`
	Detail bool `json:"detail,omitempty"`
}

// nextItemView is one row of the getNextItem response; the extra
// detail fields (summary, tags, parentId) are populated only when
// Detail is set, per the spec's "iff a detail flag is set" rule.
type nextItemView struct {
	ID         models.ID      `json:"id"`
	Title      string         `json:"title"`
	Status     string         `json:"status"`
	Priority   models.Priority `json:"priority"`
	Complexity *int           `json:"complexity,omitempty"`
	Summary    *string        `json:"summary,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	ParentID   *models.ID     `json:"parentId,omitempty"`
}

// getNextItemResult is the data payload getNextItem returns.
type getNextItemResult struct {
	Items           []nextItemView `json:"items"`
	TotalCandidates int            `json:"totalCandidates"`
}

// GetNextItem implements the C7 next-task recommendation query.
func (s *Service) GetNextItem(ctx context.Context, p GetNextItemParams) *Envelope {
	limit := nexttask.DefaultLimit
	if p.Limit != nil {
		limit = *p.Limit
	}
	filter, err := taskFilterOf(p.ProjectID, p.FeatureID, nil)
	if err != nil {
		return Fail(err)
	}

	tasks, total, err := nexttask.Recommend(ctx, s.store, s.resolver, filter, limit)
	if err != nil {
		return Fail(err)
	}

	items := make([]nextItemView, 0, len(tasks))
	for _, t := range tasks {
		v := nextItemView{ID: t.ID, Title: t.Title, Status: t.Status, Priority: t.Priority, Complexity: t.Complexity}
		if p.Detail {
			v.Summary = t.Summary
			v.Tags = t.Tags
			v.ParentID = t.FeatureID
		}
		items = append(items, v)
	}
	return Ok("ok", getNextItemResult{Items: items, TotalCandidates: total})
}

// ProgressParams bundles progress()'s fields. EntityID is optional: the
// read-only recommendation can be computed purely from (type, tags,
// currentStatus) without resolving a concrete entity, but supplying it
// lets the prerequisite validator check entity-specific gates (child
// completeness, dependency thresholds) rather than only structural
// ones.
type ProgressParams struct {
	EntityID      *string  `json:"entityId,omitempty"`
	ContainerType string   `json:"containerType"`
	Tags          []string `json:"tags,omitempty"`
	CurrentStatus string   `json:"currentStatus"`
}

// progressView mirrors progression.Result in a JSON-friendly shape.
type progressView struct {
	Kind          string   `json:"kind"`
	Current       string   `json:"current"`
	Recommended   string   `json:"recommended,omitempty"`
	FlowName      string   `json:"flowName"`
	Sequence      []string `json:"sequence"`
	Position      int      `json:"position"`
	MatchedTags   []string `json:"matchedTags,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	BlockerReason string   `json:"blockerReason,omitempty"`
}

func kindName(k progression.ResultKind) string {
	switch k {
	case progression.KindReady:
		return "ready"
	case progression.KindBlocked:
		return "blocked"
	default:
		return "terminal"
	}
}

// Progress implements the read-only C5 recommendation query.
func (s *Service) Progress(ctx context.Context, p ProgressParams) *Envelope {
	containerType, err := parseContainerType(p.ContainerType)
	if err != nil {
		return Fail(err)
	}
	var entityID *models.ID
	if p.EntityID != nil {
		id, err := parseID("entityId", *p.EntityID)
		if err != nil {
			return Fail(err)
		}
		entityID = &id
	}

	res, err := s.progression.NextStatus(ctx, containerType, entityID, p.Tags, p.CurrentStatus)
	if err != nil {
		return Fail(err)
	}
	return Ok("ok", progressView{
		Kind: kindName(res.Kind), Current: res.Current, Recommended: res.Recommended,
		FlowName: res.FlowName, Sequence: res.Sequence, Position: res.Position,
		MatchedTags: res.MatchedTags, Reason: res.Reason, BlockerReason: res.BlockerReason,
	})
}

// FlowPathParams bundles flowPath()'s fields.
type FlowPathParams struct {
	ContainerType string   `json:"containerType"`
	Tags          []string `json:"tags,omitempty"`
	CurrentStatus *string  `json:"currentStatus,omitempty"`
}

// flowPathView mirrors progression.FlowPath in a JSON-friendly shape.
type flowPathView struct {
	FlowName    string   `json:"flowName"`
	Sequence    []string `json:"sequence"`
	Position    int      `json:"position"`
	MatchedTags []string `json:"matchedTags,omitempty"`
}

// FlowPath implements the C5 flow-path projection.
func (s *Service) FlowPath(ctx context.Context, p FlowPathParams) *Envelope {
	containerType, err := parseContainerType(p.ContainerType)
	if err != nil {
		return Fail(err)
	}
	fp := s.progression.FlowPath(containerType, p.Tags, p.CurrentStatus)
	return Ok("ok", flowPathView{FlowName: fp.FlowName, Sequence: fp.Sequence, Position: fp.Position, MatchedTags: fp.MatchedTags})
}
