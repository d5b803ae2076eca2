package contexthelpers

import (
	"context"
)

func IsRegistered(ctx context.Context) bool {
	isRegistered, ok := ctx.Value(IsRegisteredContextKey).(bool)
	if !ok {
		return false
	}

	return isRegistered
}

func CurrentUserID(ctx context.Context) int64 {
	userID, ok := ctx.Value(CurrentUserIDContextKey).(int64)
	if !ok {
		return 0
	}

	return userID
}

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(CurrentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}
