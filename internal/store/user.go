package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/annapurna/internal/errs"
	"github.com/example/annapurna/internal/models"
)

// UserStore persists customer credentials, keyed by email.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore constructs a UserStore.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByEmail looks up a user by email. Absence is errs.ErrNotFound.
func (s *UserStore) FindByEmail(email string) (models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, errs.ErrNotFound
		}
		return models.User{}, errs.Storage("find user by email", err)
	}
	return user, nil
}

// FindByID looks up a user by id. Absence is errs.ErrNotFound.
func (s *UserStore) FindByID(id uuid.UUID) (models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, errs.ErrNotFound
		}
		return models.User{}, errs.Storage("find user by id", err)
	}
	return user, nil
}

// Create inserts a new user. A user with the same email already existing is
// errs.ErrConflict.
func (s *UserStore) Create(user *models.User) error {
	var existing models.User
	err := s.db.Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		return errs.ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Storage("check existing user", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return errs.Storage("create user", err)
	}
	return nil
}

// Save writes the full user record back in a single update, so the password
// hash and both challenge fields always land together.
func (s *UserStore) Save(user *models.User) error {
	if err := s.db.Model(user).Updates(map[string]interface{}{
		"name":           user.Name,
		"phone":          user.Phone,
		"password_hash":  user.PasswordHash,
		"otp_code":       user.OTPCode,
		"otp_expires_at": user.OTPExpiresAt,
	}).Error; err != nil {
		return errs.Storage("save user", err)
	}
	return nil
}
