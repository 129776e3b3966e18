package store

import (
	"context"
	"database/sql"
	"fmt"

	"identrust/internal/entity"
	"identrust/internal/institution/models"
	"identrust/internal/sentinel"
	"identrust/pkg/domain"
)

const institutionColumns = `id, created_date, updated_date, created_by, name, type, country, verified`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, i *models.Institution) error {
	entity.PrepareCreate(ctx, &i.Meta, func() string { return domain.NewID(domain.PrefixInstitution) })
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO institutions (`+institutionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, i.ID, i.CreatedDate, i.UpdatedDate, i.CreatedBy, i.Name, string(i.Type), i.Country, i.Verified)
	if err != nil {
		if entity.IsUniqueViolation(err) {
			return fmt.Errorf("institution %q: %w", i.Name, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert institution: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Institution, error) {
	return s.get(ctx, s.db, id, false)
}

func (s *PostgresStore) get(ctx context.Context, q entity.Querier, id string, lock bool) (*models.Institution, error) {
	query := `SELECT ` + institutionColumns + ` FROM institutions WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	i, err := scanInstitution(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, entity.NotFound(err)
	}
	return i, nil
}

func (s *PostgresStore) List(ctx context.Context, opts entity.ListOptions) ([]*models.Institution, error) {
	query, args := entity.ListSQL(`SELECT `+institutionColumns+` FROM institutions`, opts)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	defer rows.Close()

	var out []*models.Institution
	for rows.Next() {
		i, err := scanInstitution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan institution: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate institutions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, patch entity.Patch[models.Institution]) (*models.Institution, error) {
	return entity.UpdateTx[models.Institution](ctx, s.db, id, patch,
		func(ctx context.Context, q entity.Querier, id string) (*models.Institution, error) {
			return s.get(ctx, q, id, true)
		},
		func(ctx context.Context, q entity.Querier, i *models.Institution) error {
			_, err := q.ExecContext(ctx, `
				UPDATE institutions SET updated_date = $2, name = $3, type = $4, country = $5, verified = $6
				WHERE id = $1
			`, i.ID, i.UpdatedDate, i.Name, string(i.Type), i.Country, i.Verified)
			if err != nil {
				return fmt.Errorf("update institution: %w", err)
			}
			return nil
		},
	)
}

func scanInstitution(row entity.Scanner) (*models.Institution, error) {
	var (
		i   models.Institution
		typ string
	)
	if err := row.Scan(&i.ID, &i.CreatedDate, &i.UpdatedDate, &i.CreatedBy, &i.Name, &typ, &i.Country, &i.Verified); err != nil {
		return nil, err
	}
	i.Type = domain.IssuerType(typ)
	i.CreatedDate = i.CreatedDate.UTC()
	i.UpdatedDate = i.UpdatedDate.UTC()
	return &i, nil
}

var _ entity.Store[models.Institution] = (*PostgresStore)(nil)
