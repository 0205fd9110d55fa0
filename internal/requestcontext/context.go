// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services only read, so domain
// packages never import net/http for identity or correlation data.
package requestcontext

import "context"

type (
	actorKey     struct{}
	scopesKey    struct{}
	requestIDKey struct{}
)

// Exported keys for tests that need plain context.WithValue.
var (
	ContextKeyActor     = actorKey{}
	ContextKeyScopes    = scopesKey{}
	ContextKeyRequestID = requestIDKey{}
)

// Actor returns the authenticated actor identity, or "" when unauthenticated.
func Actor(ctx context.Context) string {
	if actor, ok := ctx.Value(ContextKeyActor).(string); ok {
		return actor
	}
	return ""
}

// WithActor injects the authenticated actor identity.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// Scopes returns the granted permission scopes for the request.
func Scopes(ctx context.Context) []string {
	if scopes, ok := ctx.Value(ContextKeyScopes).([]string); ok {
		return scopes
	}
	return nil
}

// WithScopes injects the granted permission scopes.
func WithScopes(ctx context.Context, scopes []string) context.Context {
	return context.WithValue(ctx, ContextKeyScopes, scopes)
}

// HasScope reports whether the request was granted the given scope.
func HasScope(ctx context.Context, scope string) bool {
	for _, s := range Scopes(ctx) {
		if s == scope {
			return true
		}
	}
	return false
}

// HasAnyScope reports whether any of the given scopes was granted.
func HasAnyScope(ctx context.Context, scopes ...string) bool {
	for _, s := range scopes {
		if HasScope(ctx, s) {
			return true
		}
	}
	return false
}

// RequestID returns the correlation ID set by middleware, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}
