// Package entity is the generic persistence contract shared by every record
// type: create, get, list with sort and limit, and patch-style update.
//
// Records embed Meta. Stores own updated_date: it moves only when a patch
// reports a change, so replaying a patch leaves the record untouched.
package entity

import (
	"context"
	"time"
)

// Meta is the metadata every stored record carries.
type Meta struct {
	ID          string    `json:"id"`
	CreatedDate time.Time `json:"created_date"`
	UpdatedDate time.Time `json:"updated_date"`
	CreatedBy   string    `json:"created_by"`
}

// Metadata gives stores access to the embedded Meta.
func (m *Meta) Metadata() *Meta { return m }

// Record is implemented by pointers to types embedding Meta.
type Record interface {
	Metadata() *Meta
}

// ListOptions narrows and orders a List call. A zero Limit means no limit.
// CreatedBy, when set, restricts results to one owner.
type ListOptions struct {
	Sort      Sort
	Limit     int
	CreatedBy string
}

// Patch mutates a record in place and reports whether anything changed.
type Patch[T any] func(*T) bool

// Store is the persistence contract for one record type.
type Store[T any] interface {
	// Create persists rec. Missing id and timestamps are filled in and
	// written back into rec.
	Create(ctx context.Context, rec *T) error
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, opts ListOptions) ([]*T, error)
	// Update applies patch atomically and returns the stored result.
	Update(ctx context.Context, id string, patch Patch[T]) (*T, error)
}
