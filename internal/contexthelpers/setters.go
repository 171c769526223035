package contexthelpers

import (
	"context"
	"net/http"
)

// AuthenticateContext attaches the resolved user to the request context.
func AuthenticateContext(r *http.Request, userID int64) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, IsAuthenticatedContextKey, true)
	ctx = context.WithValue(ctx, CurrentUserIDContextKey, userID)
	return r.WithContext(ctx)
}
