package auth

import "context"

type userKey struct{}

// WithUser attaches the authenticated caller to ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the caller set by RequireAccessToken.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	if !ok || u.ID == "" {
		return User{}, false
	}
	return u, true
}
