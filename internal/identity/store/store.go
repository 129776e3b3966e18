// Package store persists identities. Both stores enforce one identity per
// owner.
package store

import (
	"identrust/internal/entity"
	"identrust/internal/identity/models"
	"identrust/pkg/domain"
)

type Memory = entity.MemoryStore[models.Identity, *models.Identity]

func NewMemory() *Memory {
	return entity.NewMemoryStore[models.Identity, *models.Identity](
		domain.PrefixIdentity,
		entity.WithUniqueKey(models.OwnerKey),
	)
}
