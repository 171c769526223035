package contexthelpers

import (
	"context"
)

func IsAuthenticated(ctx context.Context) bool {
	isAuthenticated, ok := ctx.Value(IsAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}

	return isAuthenticated
}

// CurrentUserID returns the user the request acts on behalf of, or 0 when
// the context carries no user.
func CurrentUserID(ctx context.Context) int64 {
	userID, ok := ctx.Value(CurrentUserIDContextKey).(int64)
	if !ok {
		return 0
	}

	return userID
}
