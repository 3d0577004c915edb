package models

import (
	"time"
)

// User represents a customer account. PasswordHash is empty for accounts
// created through federated sign-in; such accounts cannot log in with a
// password until one is set via the recovery flow.
type User struct {
	BaseModel
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash string     `json:"-"`
	OTPCode      *string    `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	Orders       []Order    `json:"orders,omitempty"`
}

// HasChallenge reports whether a password-reset challenge is currently stored.
// OTPCode and OTPExpiresAt are always set and cleared together.
func (u *User) HasChallenge() bool {
	return u.OTPCode != nil && u.OTPExpiresAt != nil
}

// SetChallenge stores a reset code and its expiry on the user.
func (u *User) SetChallenge(code string, expiresAt time.Time) {
	u.OTPCode = &code
	u.OTPExpiresAt = &expiresAt
}

// ClearChallenge removes the stored reset challenge.
func (u *User) ClearChallenge() {
	u.OTPCode = nil
	u.OTPExpiresAt = nil
}
