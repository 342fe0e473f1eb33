package middleware

import (
	"context"

	pkgAuth "github.com/groupcollect/groupcollect-backend/pkg/auth"
)

type actorKey struct{}

// ActorFromContext returns the authenticated caller. ok is false when the
// request did not pass through Auth.
func ActorFromContext(ctx context.Context) (pkgAuth.Actor, bool) {
	if ctx == nil {
		return pkgAuth.Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(pkgAuth.Actor)
	return actor, ok
}

// WithActor injects the caller identity into the context.
func WithActor(ctx context.Context, actor pkgAuth.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// UserIDFromContext is the caller id as a string, or "" for anonymous
// requests. Used to scope redis keys.
func UserIDFromContext(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.UserID.String()
	}
	return ""
}
