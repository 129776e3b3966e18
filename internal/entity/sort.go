package entity

import (
	"strings"
	"time"

	dErrors "identrust/pkg/domain-errors"
)

// Sortable fields.
const (
	FieldCreatedDate = "created_date"
	FieldUpdatedDate = "updated_date"
)

// Sort orders list results by a metadata field.
type Sort struct {
	Field string
	Desc  bool
}

// NewestFirst is the default order of every listing.
var NewestFirst = Sort{Field: FieldCreatedDate, Desc: true}

// ParseSort reads "-created_date" style specs. Empty input yields NewestFirst.
func ParseSort(spec string) (Sort, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return NewestFirst, nil
	}
	s := Sort{Field: spec}
	if rest, ok := strings.CutPrefix(spec, "-"); ok {
		s = Sort{Field: rest, Desc: true}
	}
	switch s.Field {
	case FieldCreatedDate, FieldUpdatedDate:
		return s, nil
	default:
		return Sort{}, dErrors.New(dErrors.CodeBadRequest, "unsupported sort field: "+s.Field)
	}
}

func (s Sort) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

func (s Sort) key(m *Meta) time.Time {
	if s.Field == FieldUpdatedDate {
		return m.UpdatedDate
	}
	return m.CreatedDate
}
