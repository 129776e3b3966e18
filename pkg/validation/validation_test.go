package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "identrust/pkg/domain-errors"
)

type ValidationSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

type sampleRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=10"`
	Kind    string `json:"kind" validate:"omitempty,oneof=a b"`
	Expires string `json:"expires" validate:"isodate"`
}

func (s *ValidationSuite) TestValidate() {
	s.Run("accepts a valid request", func() {
		s.NoError(Validate(sampleRequest{Name: "ok", Kind: "a", Expires: "2026-01-31"}))
	})

	s.Run("reports missing fields by json name", func() {
		err := Validate(sampleRequest{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("name is required", err.Error())
	})

	s.Run("rejects blank strings", func() {
		err := Validate(sampleRequest{Name: "   "})
		s.Require().Error(err)
		s.Equal("name must not be blank", err.Error())
	})

	s.Run("rejects values outside the enum", func() {
		err := Validate(sampleRequest{Name: "ok", Kind: "c"})
		s.Require().Error(err)
		s.Equal("kind must be one of [a b]", err.Error())
	})

	s.Run("rejects malformed dates", func() {
		err := Validate(sampleRequest{Name: "ok", Expires: "31/01/2026"})
		s.Require().Error(err)
		s.Contains(err.Error(), "expires must be a date")
	})
}

func (s *ValidationSuite) TestCheckStringLength() {
	s.Run("passes at the limit", func() {
		s.NoError(CheckStringLength("search", strings.Repeat("a", 100), 100))
	})

	s.Run("fails past the limit", func() {
		err := CheckStringLength("search", strings.Repeat("a", 101), 100)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "search exceeds max length of 100")
	})
}
