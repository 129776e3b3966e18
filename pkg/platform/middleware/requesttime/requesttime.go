// Package requesttime pins one timestamp per request. Every created_date,
// updated_date, exported_at and audit timestamp written while serving the
// request reads the same value.
package requesttime

import (
	"context"
	"net/http"
	"time"
)

type pinnedKey struct{}

// Clock supplies the instant a request is pinned to.
type Clock func() time.Time

// Middleware pins requests to the wall clock.
var Middleware = Pin(time.Now)

// Pin returns middleware that stores clock() on each request context.
func Pin(clock Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithTime(r.Context(), clock())))
		})
	}
}

// Now returns the pinned instant, or the current time when nothing was
// pinned (CLI tools, seeders, tests). Values are UTC with microsecond
// precision, the resolution PostgreSQL timestamptz keeps.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(pinnedKey{}).(time.Time); ok {
		return t
	}
	return normalize(time.Now())
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, pinnedKey{}, normalize(t))
}

func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
