// Package store persists the verification log.
package store

import (
	"identrust/internal/entity"
	"identrust/internal/verification/models"
	"identrust/pkg/domain"
)

// Memory is the append-only in-memory verification log.
type Memory = entity.MemoryStore[models.Verification, *models.Verification]

func NewMemory() *Memory {
	return entity.NewMemoryStore[models.Verification, *models.Verification](
		domain.PrefixVerification,
		entity.Immutable[models.Verification](),
	)
}
