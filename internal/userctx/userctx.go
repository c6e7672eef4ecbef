// Package userctx carries the request-scoped evaluator identity. There is
// no process-wide "current user"; every operation receives identity through
// its context.
package userctx

import (
	"context"
	"strings"
)

// UserContextKey is the request context key for the authenticated user name.
type UserContextKey struct{}

// Normalize canonicalizes a self-asserted display name: trimmed,
// upper-cased, inner whitespace collapsed. All identity comparisons use the
// normalized form.
func Normalize(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// WithUser stores the normalized user name in the context.
func WithUser(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, UserContextKey{}, Normalize(name))
}

// UserFromContext returns the user name from context, if set.
func UserFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	name, ok := ctx.Value(UserContextKey{}).(string)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
