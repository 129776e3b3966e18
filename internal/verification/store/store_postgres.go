package store

import (
	"context"
	"database/sql"
	"fmt"

	"identrust/internal/entity"
	"identrust/internal/sentinel"
	"identrust/internal/verification/models"
	"identrust/pkg/domain"
)

const verificationColumns = `id, created_date, updated_date, created_by, credential_id, verifier_name,
	verification_type, verification_result, verification_method, location, is_offline`

// PostgresStore persists verifications. Rows are never updated.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, v *models.Verification) error {
	entity.PrepareCreate(ctx, &v.Meta, func() string { return domain.NewID(domain.PrefixVerification) })
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verifications (`+verificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		v.ID, v.CreatedDate, v.UpdatedDate, v.CreatedBy, v.CredentialID, v.VerifierName,
		string(v.VerificationType), string(v.VerificationResult), string(v.VerificationMethod),
		v.Location, v.IsOffline,
	)
	if err != nil {
		if entity.IsUniqueViolation(err) {
			return fmt.Errorf("verification %s: %w", v.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Verification, error) {
	v, err := scanVerification(s.db.QueryRowContext(ctx,
		`SELECT `+verificationColumns+` FROM verifications WHERE id = $1`, id))
	if err != nil {
		return nil, entity.NotFound(err)
	}
	return v, nil
}

func (s *PostgresStore) List(ctx context.Context, opts entity.ListOptions) ([]*models.Verification, error) {
	query, args := entity.ListSQL(`SELECT `+verificationColumns+` FROM verifications`, opts)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verifications: %w", err)
	}
	return out, nil
}

// Update always fails: the log is append-only.
func (s *PostgresStore) Update(_ context.Context, id string, _ entity.Patch[models.Verification]) (*models.Verification, error) {
	return nil, fmt.Errorf("verification %s is append-only: %w", id, sentinel.ErrInvalidState)
}

func scanVerification(row entity.Scanner) (*models.Verification, error) {
	var (
		v                     models.Verification
		vType, result, method string
	)
	err := row.Scan(
		&v.ID, &v.CreatedDate, &v.UpdatedDate, &v.CreatedBy, &v.CredentialID, &v.VerifierName,
		&vType, &result, &method, &v.Location, &v.IsOffline,
	)
	if err != nil {
		return nil, err
	}
	v.VerificationType = models.Type(vType)
	v.VerificationResult = models.Result(result)
	v.VerificationMethod = models.Method(method)
	v.CreatedDate = v.CreatedDate.UTC()
	v.UpdatedDate = v.UpdatedDate.UTC()
	return &v, nil
}

var _ entity.Store[models.Verification] = (*PostgresStore)(nil)
