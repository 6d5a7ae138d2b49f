// Package requestctx carries the acting session identity through context.
package requestctx

import "context"

// Actor identifies who is performing an operation.
type Actor struct {
	Username string
	Role     string
}

type actorContextKey struct{}

// SystemActor is reported when no session is attached to the context.
var SystemActor = Actor{Username: "sistema", Role: "system"}

// WithActor stores the acting identity in context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the acting identity stored in context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	if !ok || actor.Username == "" {
		return Actor{}, false
	}
	return actor, true
}

// ActorOrSystem returns the acting identity, or SystemActor when none is set.
func ActorOrSystem(ctx context.Context) Actor {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor
	}
	return SystemActor
}
