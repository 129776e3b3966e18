package entity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"identrust/internal/sentinel"
	"identrust/pkg/platform/middleware/requesttime"
)

// Querier is implemented by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ListSQL appends the owner filter, ordering and limit of opts to a SELECT
// over a table with the standard metadata columns plus a seq tie-breaker.
func ListSQL(selectFrom string, opts ListOptions) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(selectFrom)
	if opts.CreatedBy != "" {
		args = append(args, opts.CreatedBy)
		b.WriteString(" WHERE created_by = $" + strconv.Itoa(len(args)))
	}

	order := opts.Sort
	if order.Field == "" {
		order = NewestFirst
	}
	column := FieldCreatedDate
	if order.Field == FieldUpdatedDate {
		column = FieldUpdatedDate
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	b.WriteString(" ORDER BY " + column + " " + dir + ", seq " + dir)

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		b.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	return b.String(), args
}

// PrepareCreate fills the metadata Create is responsible for.
func PrepareCreate(ctx context.Context, m *Meta, newID func() string) {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.CreatedDate.IsZero() {
		m.CreatedDate = requesttime.Now(ctx)
	}
	if m.UpdatedDate.IsZero() {
		m.UpdatedDate = m.CreatedDate
	}
}

// UpdateTx runs a read-patch-write cycle in one transaction. load must lock
// the row (SELECT ... FOR UPDATE) and return sentinel.ErrNotFound when it is
// missing; save writes the patched record back.
func UpdateTx[T any, PT interface {
	*T
	Record
}](
	ctx context.Context,
	db *sql.DB,
	id string,
	patch Patch[T],
	load func(ctx context.Context, q Querier, id string) (*T, error),
	save func(ctx context.Context, q Querier, rec *T) error,
) (_ *T, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // the original error wins
		}
	}()

	rec, err := load(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	before := *PT(rec).Metadata()
	if !patch(rec) {
		return rec, tx.Commit()
	}

	meta := PT(rec).Metadata()
	meta.ID = before.ID
	meta.CreatedDate = before.CreatedDate
	meta.CreatedBy = before.CreatedBy
	meta.UpdatedDate = requesttime.Now(ctx)
	if err = save(ctx, tx, rec); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// NotFound maps sql.ErrNoRows to sentinel.ErrNotFound.
func NotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	return err
}

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique violation.
func IsUniqueViolation(err error) bool {
	var coded interface{ SQLState() string }
	return errors.As(err, &coded) && coded.SQLState() == uniqueViolation
}
