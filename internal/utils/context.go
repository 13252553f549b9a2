package utils

import (
	"context"
)

type contextKey string

const ContextSessionIDKey contextKey = "sessionID"

func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	id := ctx.Value(ContextSessionIDKey)
	idStr, ok := id.(string)
	return idStr, ok
}
