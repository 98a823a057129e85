// Package user manages the credential store: a flat JSON file of users with
// bcrypt password hashes, plus verification and account management on top.
package user

import (
	"time"

	"github.com/google/uuid"
)

// User is one account in the credential store. PasswordHash is omitted from
// JSON when cleared, which List relies on to keep hashes out of API responses.
type User struct {
	ID                uuid.UUID  `json:"id"`
	Username          string     `json:"username"`
	PasswordHash      string     `json:"passwordHash,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	CreatedBy         string     `json:"createdBy,omitempty"`
	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	PasswordResetBy   string     `json:"passwordResetBy,omitempty"`
	LastLogin         *time.Time `json:"lastLogin,omitempty"`
}

// Public returns a copy safe for API responses, with the hash stripped.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
