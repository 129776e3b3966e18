// Package token issues and validates the bearer tokens that identify wallet
// owners. Tokens are HS256 JWTs carrying the owner's e-mail and role.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/platform/middleware/auth"
	"identrust/pkg/platform/middleware/requesttime"
)

// Claims are the JWT claims of an owner token. AccountCreated is the unix
// time the account was registered with the upstream identity provider.
type Claims struct {
	Email          string `json:"email"`
	Role           string `json:"role"`
	AccountCreated int64  `json:"account_created,omitempty"`
	jwt.RegisteredClaims
}

// Service handles token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
}

func NewService(signingKey, issuer, audience string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		ttl:        ttl,
	}
}

// Generate signs a token for the given owner. A zero accountCreated falls
// back to the issue time.
func (s *Service) Generate(ctx context.Context, email, role string, accountCreated time.Time) (string, error) {
	if email == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if role == "" {
		role = "user"
	}
	now := requesttime.Now(ctx)
	if accountCreated.IsZero() {
		accountCreated = now
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:          email,
		Role:           role,
		AccountCreated: accountCreated.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := t.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Parse validates signature, algorithm, issuer, audience and expiry.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidateToken adapts Parse to the auth middleware.
func (s *Service) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	created := time.Unix(claims.AccountCreated, 0).UTC()
	if claims.AccountCreated == 0 && claims.IssuedAt != nil {
		created = claims.IssuedAt.UTC()
	}
	return &auth.JWTClaims{
		Email:     claims.Email,
		Role:      claims.Role,
		CreatedAt: created,
	}, nil
}
