package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"identrust/pkg/requestcontext"
)

// MaxForwardedLength bounds the X-Forwarded-For value we are willing to parse.
const MaxForwardedLength = 500

// Middleware resolves the client address and User-Agent into the request
// context. Forwarding headers are honoured only from trusted proxies.
type Middleware struct {
	trusted []netip.Prefix
}

// NewMiddleware creates the middleware. With no prefixes forwarding headers
// are ignored.
func NewMiddleware(trustedProxies ...netip.Prefix) *Middleware {
	return &Middleware{trusted: trustedProxies}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), m.clientIP(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) clientIP(r *http.Request) string {
	remote := remoteHost(r.RemoteAddr)
	if remote == "" {
		return "unknown"
	}
	if !m.isTrusted(remote) {
		return remote
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		forwarded = r.Header.Get("X-Real-IP")
	}
	if forwarded == "" || len(forwarded) > MaxForwardedLength {
		return remote
	}

	first, _, _ := strings.Cut(forwarded, ",")
	first = strings.TrimSpace(first)
	if _, err := netip.ParseAddr(first); err != nil {
		return remote
	}
	return first
}

func (m *Middleware) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, p := range m.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return strings.Trim(remoteAddr, "[]")
	}
	return host
}
