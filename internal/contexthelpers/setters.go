package contexthelpers

import (
	"context"
	"net/http"
)

// IdentifyContext marks the request as belonging to a registered user.
func IdentifyContext(r *http.Request, userID int64) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, IsRegisteredContextKey, true)
	ctx = context.WithValue(ctx, CurrentUserIDContextKey, userID)
	return r.WithContext(ctx)
}

func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, CurrentPathContextKey, currentPath)
	return r.WithContext(ctx)
}
