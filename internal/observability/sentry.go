package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Spok95/siakad/internal/ctxutil"
)

func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

func CaptureErr(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}

// CaptureRequestErr reports err with the request id, route and caller role as tags.
func CaptureRequestErr(r *http.Request, route string, err error) {
	if err == nil {
		return
	}
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(r)
		if rid, ok := ctxutil.RequestID(ctx); ok {
			scope.SetTag("request_id", rid)
		}
		if uid, ok := ctxutil.UserID(ctx); ok {
			scope.SetUser(sentry.User{ID: strconv.FormatInt(uid, 10)})
		}
		scope.SetTag("route", route)
		scope.SetTag("role", string(ctxutil.Role(ctx).Kind()))
		hub.CaptureException(err)
	})
}
