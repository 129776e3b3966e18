package store

import (
	"context"
	"database/sql"
	"fmt"

	"identrust/internal/credential/models"
	"identrust/internal/entity"
	"identrust/internal/sentinel"
	"identrust/pkg/domain"
)

const credentialColumns = `id, created_date, updated_date, created_by, credential_type, issuer_name,
	issuer_type, credential_data, issue_date, expiry_date, privacy_level, verification_hash,
	qr_code, status, verification_count`

// PostgresStore persists credentials in the credentials table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Credential) error {
	entity.PrepareCreate(ctx, &c.Meta, func() string { return domain.NewID(domain.PrefixCredential) })
	data := c.CredentialData
	if len(data) == 0 {
		data = []byte("{}")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (`+credentialColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		c.ID, c.CreatedDate, c.UpdatedDate, c.CreatedBy,
		string(c.CredentialType), c.IssuerName, string(c.IssuerType), string(data),
		c.IssueDate, c.ExpiryDate, string(c.PrivacyLevel), c.VerificationHash,
		c.QRCode, string(c.Status), c.VerificationCount,
	)
	if err != nil {
		if entity.IsUniqueViolation(err) {
			return fmt.Errorf("credential %s: %w", c.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Credential, error) {
	return s.get(ctx, s.db, id, false)
}

func (s *PostgresStore) get(ctx context.Context, q entity.Querier, id string, lock bool) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	c, err := scanCredential(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, entity.NotFound(err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context, opts entity.ListOptions) ([]*models.Credential, error) {
	query, args := entity.ListSQL(`SELECT `+credentialColumns+` FROM credentials`, opts)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []*models.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, patch entity.Patch[models.Credential]) (*models.Credential, error) {
	return entity.UpdateTx[models.Credential](ctx, s.db, id, patch,
		func(ctx context.Context, q entity.Querier, id string) (*models.Credential, error) {
			return s.get(ctx, q, id, true)
		},
		func(ctx context.Context, q entity.Querier, c *models.Credential) error {
			_, err := q.ExecContext(ctx, `
				UPDATE credentials
				SET updated_date = $2, qr_code = $3, status = $4, verification_count = $5
				WHERE id = $1
			`, c.ID, c.UpdatedDate, c.QRCode, string(c.Status), c.VerificationCount)
			if err != nil {
				return fmt.Errorf("update credential: %w", err)
			}
			return nil
		},
	)
}

func scanCredential(row entity.Scanner) (*models.Credential, error) {
	var (
		c                                     models.Credential
		credType, issuerType, privacy, status string
		data                                  []byte
	)
	err := row.Scan(
		&c.ID, &c.CreatedDate, &c.UpdatedDate, &c.CreatedBy,
		&credType, &c.IssuerName, &issuerType, &data,
		&c.IssueDate, &c.ExpiryDate, &privacy, &c.VerificationHash,
		&c.QRCode, &status, &c.VerificationCount,
	)
	if err != nil {
		return nil, err
	}
	c.CredentialType = models.CredentialType(credType)
	c.IssuerType = domain.IssuerType(issuerType)
	c.PrivacyLevel = models.PrivacyLevel(privacy)
	c.Status = models.Status(status)
	c.CredentialData = data
	c.CreatedDate = c.CreatedDate.UTC()
	c.UpdatedDate = c.UpdatedDate.UTC()
	return &c, nil
}

var _ entity.Store[models.Credential] = (*PostgresStore)(nil)
