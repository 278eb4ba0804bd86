// Package ctxutil carries per-request facts (request id, token subject,
// resolved role) and the database timeout policy.
package ctxutil

import (
	"context"
	"time"

	"github.com/Spok95/siakad/internal/access"
)

// приватные ключи, чтобы исключить коллизии
type key int

const (
	keyRequestID key = iota
	keyUserID
	keyRole
)

func value[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

// WithRequestID stores the X-Request-ID echoed to the client, logs and Sentry.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestID(ctx context.Context) (string, bool) { return value[string](ctx, keyRequestID) }

// WithUserID stores the token subject (users.id).
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

func UserID(ctx context.Context) (int64, bool) { return value[int64](ctx, keyUserID) }

// WithRole кладёт роль, вычисленную один раз на запрос.
func WithRole(ctx context.Context, r access.Role) context.Context {
	return context.WithValue(ctx, keyRole, r)
}

// Role never returns nil: a request without a resolved role is anonymous.
func Role(ctx context.Context) access.Role {
	if r, ok := value[access.Role](ctx, keyRole); ok && r != nil {
		return r
	}
	return access.Anonymous{}
}

// DefaultDBTimeout bounds a single repository call.
var DefaultDBTimeout = 5 * time.Second

// WithDBTimeout keeps the parent's deadline when it is the tighter one.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok && time.Until(dl) < DefaultDBTimeout {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
