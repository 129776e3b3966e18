// Package service serves the trusted institution list.
package service

import (
	"context"
	"log/slog"

	"identrust/internal/entity"
	"identrust/internal/institution/models"
	"identrust/pkg/domain"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/requestcontext"
)

// Store lists institutions. Both the memory and Postgres stores satisfy it.
type Store interface {
	List(ctx context.Context, opts entity.ListOptions) ([]*models.Institution, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns institutions in seeding order, optionally narrowed to one
// issuer type. An empty type returns all of them.
func (s *Service) List(ctx context.Context, issuerType domain.IssuerType) ([]*models.Institution, error) {
	all, err := s.store.List(ctx, entity.ListOptions{
		Sort: entity.Sort{Field: entity.FieldCreatedDate},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list institutions",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list institutions")
	}
	if issuerType == "" {
		return all, nil
	}
	out := make([]*models.Institution, 0, len(all))
	for _, i := range all {
		if i.Type == issuerType {
			out = append(out, i)
		}
	}
	return out, nil
}
