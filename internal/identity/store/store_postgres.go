package store

import (
	"context"
	"database/sql"
	"fmt"

	"identrust/internal/entity"
	"identrust/internal/identity/models"
	"identrust/internal/sentinel"
	"identrust/pkg/domain"
)

const identityColumns = `id, created_date, updated_date, created_by, full_name, nationality,
	wallet_address, identity_hash, verification_level, backup_phrase`

// PostgresStore persists identities; identities_created_by_key enforces the
// one-per-owner rule.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, i *models.Identity) error {
	entity.PrepareCreate(ctx, &i.Meta, func() string { return domain.NewID(domain.PrefixIdentity) })
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (`+identityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		i.ID, i.CreatedDate, i.UpdatedDate, i.CreatedBy, i.FullName, i.Nationality,
		i.WalletAddress, i.IdentityHash, string(i.VerificationLevel), i.BackupPhrase,
	)
	if err != nil {
		if entity.IsUniqueViolation(err) {
			return fmt.Errorf("identity for %s: %w", i.CreatedBy, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Identity, error) {
	return s.get(ctx, s.db, id, false)
}

func (s *PostgresStore) get(ctx context.Context, q entity.Querier, id string, lock bool) (*models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	i, err := scanIdentity(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, entity.NotFound(err)
	}
	return i, nil
}

func (s *PostgresStore) List(ctx context.Context, opts entity.ListOptions) ([]*models.Identity, error) {
	query, args := entity.ListSQL(`SELECT `+identityColumns+` FROM identities`, opts)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var out []*models.Identity
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, patch entity.Patch[models.Identity]) (*models.Identity, error) {
	return entity.UpdateTx[models.Identity](ctx, s.db, id, patch,
		func(ctx context.Context, q entity.Querier, id string) (*models.Identity, error) {
			return s.get(ctx, q, id, true)
		},
		func(ctx context.Context, q entity.Querier, i *models.Identity) error {
			_, err := q.ExecContext(ctx, `
				UPDATE identities
				SET updated_date = $2, full_name = $3, nationality = $4, wallet_address = $5,
					identity_hash = $6, verification_level = $7, backup_phrase = $8
				WHERE id = $1
			`, i.ID, i.UpdatedDate, i.FullName, i.Nationality, i.WalletAddress,
				i.IdentityHash, string(i.VerificationLevel), i.BackupPhrase)
			if err != nil {
				return fmt.Errorf("update identity: %w", err)
			}
			return nil
		},
	)
}

func scanIdentity(row entity.Scanner) (*models.Identity, error) {
	var (
		i     models.Identity
		level string
	)
	err := row.Scan(
		&i.ID, &i.CreatedDate, &i.UpdatedDate, &i.CreatedBy, &i.FullName, &i.Nationality,
		&i.WalletAddress, &i.IdentityHash, &level, &i.BackupPhrase,
	)
	if err != nil {
		return nil, err
	}
	i.VerificationLevel = models.Level(level)
	i.CreatedDate = i.CreatedDate.UTC()
	i.UpdatedDate = i.UpdatedDate.UTC()
	return &i, nil
}

var _ entity.Store[models.Identity] = (*PostgresStore)(nil)
