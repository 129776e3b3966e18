package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/requestcontext"
)

func TestMe(t *testing.T) {
	t.Run("returns the principal", func(t *testing.T) {
		created := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithPrincipal(context.Background(), requestcontext.Principal{
			Email: "ada@example.com", Role: "user", CreatedAt: created,
		})

		me, err := New().Me(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", me.Email)
		assert.Equal(t, "user", me.Role)
		assert.Equal(t, created, me.CreatedDate)
	})

	t.Run("unauthorized without a principal", func(t *testing.T) {
		_, err := New().Me(context.Background())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
