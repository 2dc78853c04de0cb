package tools

import (
	"context"

	"github.com/vantage-labs/orcaflow/internal/apperr"
	"github.com/vantage-labs/orcaflow/internal/models"
)

// QueryHistoryParams bundles queryHistory's fields: the append-only
// audit trail is read by entity id only, no cross-entity listing.
type QueryHistoryParams struct {
	EntityID string `json:"entityId"`
}

// QueryHistory returns the role-transition audit trail recorded by
// every status change that moves the entity into a different role,
// oldest first, for the supplemented read the
// original tool never exposed as a first-class operation.
func (s *Service) QueryHistory(ctx context.Context, p QueryHistoryParams) *Envelope {
	id, err := parseID("entityId", p.EntityID)
	if err != nil {
		return Fail(err)
	}
	transitions, err := s.store.ListRoleTransitions(ctx, id)
	if err != nil {
		return Fail(apperr.Store(err))
	}
	if transitions == nil {
		transitions = []*models.RoleTransition{}
	}
	return Ok("ok", transitions)
}
