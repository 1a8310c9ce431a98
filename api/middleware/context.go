package middleware

import (
	"context"

	pkgAuth "github.com/uniformhub/gateway/pkg/auth"
	"github.com/uniformhub/gateway/pkg/enums"
)

type contextKey string

const (
	ctxAccess contextKey = "access"
	ctxToken  contextKey = "access_token"
)

// WithAccess stores the caller identity and its raw token for downstream handlers.
func WithAccess(ctx context.Context, access pkgAuth.Access, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxAccess, access)
	return context.WithValue(ctx, ctxToken, token)
}

// AccessFromContext returns the authenticated identity, if any.
func AccessFromContext(ctx context.Context) (pkgAuth.Access, bool) {
	if ctx == nil {
		return pkgAuth.Access{}, false
	}
	access, ok := ctx.Value(ctxAccess).(pkgAuth.Access)
	return access, ok
}

func RoleFromContext(ctx context.Context) enums.Role {
	access, _ := AccessFromContext(ctx)
	return access.Role
}

func EmailFromContext(ctx context.Context) string {
	access, _ := AccessFromContext(ctx)
	return access.Email
}

func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxToken).(string); ok {
		return v
	}
	return ""
}
