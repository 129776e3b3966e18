// Package store persists credentials in memory or PostgreSQL.
package store

import (
	"identrust/internal/credential/models"
	"identrust/internal/entity"
	"identrust/pkg/domain"
)

// Memory is the in-memory credential store.
type Memory = entity.MemoryStore[models.Credential, *models.Credential]

func NewMemory() *Memory {
	return entity.NewMemoryStore[models.Credential, *models.Credential](
		domain.PrefixCredential,
		entity.WithClone(models.Credential.Clone),
	)
}
