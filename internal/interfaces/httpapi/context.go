package httpapi

import (
	"context"

	"github.com/riskibarqy/tennis-club/internal/domain/user"
)

type contextKey string

const (
	principalContextKey   contextKey = "auth_principal"
	errorDetailContextKey contextKey = "error_detail"
)

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(user.Principal)
	return p, ok
}

// withErrorDetail marks the request so internal error responses carry the wrapped cause.
func withErrorDetail(ctx context.Context) context.Context {
	return context.WithValue(ctx, errorDetailContextKey, true)
}

func errorDetailEnabled(ctx context.Context) bool {
	enabled, _ := ctx.Value(errorDetailContextKey).(bool)
	return enabled
}
