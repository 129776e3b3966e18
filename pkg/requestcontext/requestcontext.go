// Package requestcontext carries request-scoped values set by middleware:
// request id, client metadata, device display name and the authenticated
// principal. Readers return zero values when a key is absent so that
// services stay usable outside HTTP (tests, CLI).
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey  struct{}
	clientIPKey   struct{}
	userAgentKey  struct{}
	deviceNameKey struct{}
	principalKey  struct{}
)

// Principal is the authenticated caller. Records are owned by Email.
type Principal struct {
	Email    string
	Role     string
	CreatedAt time.Time
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithClientMetadata stores the resolved client IP and raw User-Agent.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}

func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey{}).(string)
	return v
}

// WithDeviceName stores a display name such as "Chrome on Linux".
func WithDeviceName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, deviceNameKey{}, name)
}

func DeviceName(ctx context.Context) string {
	v, _ := ctx.Value(deviceNameKey{}).(string)
	return v
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Owner returns the e-mail of the authenticated caller or "".
func Owner(ctx context.Context) string {
	p, _ := PrincipalFrom(ctx)
	return p.Email
}
