package service

import (
	"context"

	"identrust/internal/user/models"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/requestcontext"
)

// Service answers questions about the authenticated caller.
type Service struct{}

func New() *Service {
	return &Service{}
}

// Me returns the caller resolved by the auth middleware.
func (s *Service) Me(ctx context.Context) (*models.User, error) {
	p, ok := requestcontext.PrincipalFrom(ctx)
	if !ok || p.Email == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return &models.User{
		Email:       p.Email,
		Role:        p.Role,
		CreatedDate: p.CreatedAt,
	}, nil
}
