package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "identrust/pkg/domain-errors"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want Sort
	}{
		{in: "", want: NewestFirst},
		{in: "-created_date", want: Sort{Field: FieldCreatedDate, Desc: true}},
		{in: "created_date", want: Sort{Field: FieldCreatedDate}},
		{in: " -updated_date ", want: Sort{Field: FieldUpdatedDate, Desc: true}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSort(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects unknown fields", func(t *testing.T) {
		_, err := ParseSort("-issuer_name")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("string round trip", func(t *testing.T) {
		assert.Equal(t, "-created_date", NewestFirst.String())
		assert.Equal(t, "updated_date", Sort{Field: FieldUpdatedDate}.String())
	})
}
