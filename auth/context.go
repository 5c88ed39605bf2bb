package auth

import (
	"context"

	"github.com/jrsteele09/go-bucket-browser/sessions"
)

type userContextKey struct{}

// WithUser attaches the verified user to ctx.
func WithUser(ctx context.Context, user sessions.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the user attached by WithUser.
func UserFromContext(ctx context.Context) (sessions.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(sessions.User)
	return user, ok
}
