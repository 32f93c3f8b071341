package entity

import (
	"time"
)

// Account is the aggregate root for the credential domain.
// PasswordHash holds a bcrypt hash and is never serialized outward.
type Account struct {
	ID           string    `json:"id"`
	Organization string    `json:"organization"`
	Email        string    `json:"email"`
	Mobile       string    `json:"mobile"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Address      string    `json:"address"`
	DeviceID     *string   `json:"mac,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Activated    bool      `json:"activated"`
}

// Sanitized is the outward projection of an Account returned after login and
// from the admin listing. It exists so the password hash cannot leak through
// a careless marshal of the aggregate.
type Sanitized struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Mobile       string `json:"mobile"`
	Address      string `json:"address"`
	Activated    bool   `json:"activated"`
}

// Sanitize returns the safe projection of the account.
func (a *Account) Sanitize() Sanitized {
	return Sanitized{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		Organization: a.Organization,
		Mobile:       a.Mobile,
		Address:      a.Address,
		Activated:    a.Activated,
	}
}
