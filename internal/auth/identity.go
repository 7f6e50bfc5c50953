package auth

import (
	"context"

	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/models"
)

type actorKey struct{}

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(models.Actor)
	return actor, ok
}

// ContextIdentity answers the ledger's role checks from the request context.
var ContextIdentity ledger.Identity = ledger.IdentityFunc(ActorFrom)
