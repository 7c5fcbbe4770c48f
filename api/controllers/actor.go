package controllers

import (
	"context"

	"github.com/khetisathi/khetisathi-backend/api/middleware"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
)

// actorFromContext captures the authenticated operator for outbox attribution.
func actorFromContext(ctx context.Context) *outbox.ActorRef {
	operatorID, ok := middleware.OperatorIDFromContext(ctx)
	if !ok {
		return nil
	}
	return &outbox.ActorRef{
		OperatorID: &operatorID,
		Role:       middleware.RoleFromContext(ctx).String(),
	}
}
