package contexthelpers

type contextKey string

const CurrentUserIDContextKey = contextKey("currentUserID")
const IsAuthenticatedContextKey = contextKey("isAuthenticated")
