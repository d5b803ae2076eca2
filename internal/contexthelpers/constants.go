package contexthelpers

type contextKey string

const IsRegisteredContextKey = contextKey("isRegistered")
const CurrentUserIDContextKey = contextKey("currentUserID")
const CurrentPathContextKey = contextKey("currentPath")
