package domain

import "time"

// User represents a user of the application in the domain. Authentication is
// handled at the HTTP boundary; the core only consumes the trusted user ID.
type User struct {
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // soft delete
}
