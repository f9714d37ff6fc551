package middleware

import (
	"context"
	"strings"

	"github.com/teampulse/backend/pkg/errorx"
	"github.com/teampulse/backend/pkg/router"
	"github.com/teampulse/backend/pkg/xcontext"
)

// WithAuth resolves a bearer token to a request user id. It never fails on
// its own, endpoints that require a user follow it with Authenticate.
func WithAuth() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		req := xcontext.HTTPRequest(ctx)
		if req == nil {
			return ctx, nil
		}

		authorization := req.Header.Get("Authorization")
		if !strings.HasPrefix(authorization, "Bearer ") {
			return ctx, nil
		}

		token := strings.TrimPrefix(authorization, "Bearer ")
		if token == "" {
			return ctx, nil
		}

		accessToken, err := xcontext.TokenEngine(ctx).Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return ctx, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, accessToken.ID), nil
	}
}

func Authenticate() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if xcontext.RequestUserID(ctx) == "" {
			return ctx, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return ctx, nil
	}
}
