package inventory

import "context"

type actorKey struct{}

// DefaultActor is recorded as changedBy when the context names no actor.
const DefaultActor = "system"

// WithActor returns a context whose mutations are attributed to name.
func WithActor(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, name)
}

// Actor returns the actor carried by ctx.
func Actor(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultActor
}
