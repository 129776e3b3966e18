package device

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"identrust/pkg/requestcontext"
)

// Device derives a display name from the User-Agent already placed in the
// context by the metadata middleware. Register it after metadata.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ua := requestcontext.UserAgent(ctx); ua != "" {
			ctx = requestcontext.WithDeviceName(ctx, DisplayName(ua))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DisplayName renders "Browser on OS" (e.g. "Chrome on Linux", "Safari on iPhone").
func DisplayName(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	os := ua.OS()
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}
