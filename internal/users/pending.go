package users

import "time"

// PendingRegistration is the transient state between register and verify. It
// never reaches the user table; the code is kept only as a keyed hash.
type PendingRegistration struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CodeHash     string    `json:"codeHash"`
	Attempts     int       `json:"attempts"`
	CreatedAt    time.Time `json:"createdAt"`
	LastSentAt   time.Time `json:"lastSentAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
