package persist

import "context"

type actorKey struct{}

// Actor identifies who performed a write. It is copied into activity events.
type Actor struct {
	ActorID  string
	UserID   string
	TenantID string
}

// WithActor attaches actor to ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor attached by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
