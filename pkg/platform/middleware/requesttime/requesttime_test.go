package requesttime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	t.Run("same instant for every read within a request", func(t *testing.T) {
		var first, second time.Time
		handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			first = Now(r.Context())
			time.Sleep(5 * time.Millisecond)
			second = Now(r.Context())
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

		assert.False(t, first.IsZero())
		assert.Equal(t, first, second)
		assert.Equal(t, time.UTC, first.Location())
	})
}

func TestWithTime(t *testing.T) {
	pinned := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.FixedZone("CET", 3600))
	ctx := WithTime(context.Background(), pinned)

	got := Now(ctx)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 589793000, got.Nanosecond())
	assert.True(t, got.Equal(pinned.Truncate(time.Microsecond)))
}

func TestPin(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var got time.Time
	handler := Pin(func() time.Time { return fixed })(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = Now(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/credentials", nil))

	assert.Equal(t, fixed, got)
}
