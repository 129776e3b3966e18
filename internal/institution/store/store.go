// Package store persists the institution lookup list.
package store

import (
	"identrust/internal/entity"
	"identrust/internal/institution/models"
	"identrust/pkg/domain"
)

type Memory = entity.MemoryStore[models.Institution, *models.Institution]

func NewMemory() *Memory {
	return entity.NewMemoryStore[models.Institution, *models.Institution](
		domain.PrefixInstitution,
		entity.WithUniqueKey(models.NameKey),
	)
}
