package models

import "time"

// User is the authenticated wallet owner as reported by the identity
// provider. It is never persisted by this service.
type User struct {
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CreatedDate time.Time `json:"created_date"`
}
