// Package models holds trusted institutions shown next to the issuance form.
package models

import (
	"identrust/internal/entity"
	"identrust/pkg/domain"
)

// Institution is a read-only lookup record. Names are unique.
type Institution struct {
	entity.Meta
	Name     string            `json:"name"`
	Type     domain.IssuerType `json:"type"`
	Country  string            `json:"country"`
	Verified bool              `json:"verified"`
}

// NameKey is the uniqueness key of institutions.
func NameKey(i *Institution) string {
	return i.Name
}
