package recovery

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/annapurna/internal/errs"
	"github.com/example/annapurna/internal/models"
	"github.com/example/annapurna/internal/utils"
)

// ErrDeliveryFailed marks a code that was issued and persisted but could not
// be delivered. The challenge stays valid; the caller decides how to report it.
var ErrDeliveryFailed = errors.New("code delivery failed")

// UserStore is the slice of the credential store the recovery flow needs.
type UserStore interface {
	FindByEmail(email string) (models.User, error)
	Save(user *models.User) error
}

// CodeSender delivers a reset code to the account's email address.
type CodeSender interface {
	SendOTP(email, code string) error
}

// Controller drives the password-recovery state machine: a challenge is
// issued against an account, expires after the configured TTL, and is
// consumed by exactly one successful reset. Expiry is evaluated lazily at
// verification time; no background sweep exists.
type Controller struct {
	users  UserStore
	sender CodeSender
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewController constructs a Controller. ttl is how long an issued code
// stays valid.
func NewController(users UserStore, sender CodeSender, ttl time.Duration) *Controller {
	return &Controller{
		users:    users,
		sender:   sender,
		ttl:      ttl,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

// RequestReset issues a fresh 6-digit code for the account, overwriting any
// previously issued one, and hands it to the delivery collaborator. A
// delivery failure is reported to the caller but the challenge stays valid.
// Issuance is throttled per email.
func (c *Controller) RequestReset(email string) error {
	if email == "" {
		return errs.Validation("email")
	}

	if !c.limiter(email).Allow() {
		return errs.ErrRateLimited
	}

	user, err := c.users.FindByEmail(email)
	if err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}

	user.SetChallenge(code, c.now().Add(c.ttl))
	if err := c.users.Save(&user); err != nil {
		return err
	}

	if err := c.sender.SendOTP(email, code); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// VerifyAndReset consumes the challenge: on an exact code match before
// expiry it sets the new password and clears both challenge fields in one
// write. Any mismatch or expired code leaves the challenge untouched so the
// user may retry until a fresh code is requested.
func (c *Controller) VerifyAndReset(email, code, newPassword string) error {
	switch {
	case email == "":
		return errs.Validation("email")
	case code == "":
		return errs.Validation("otp")
	case newPassword == "":
		return errs.Validation("newPassword")
	}

	user, err := c.users.FindByEmail(email)
	if err != nil {
		if err == errs.ErrNotFound {
			return errs.ErrInvalidOrExpiredCode
		}
		return err
	}

	if !user.HasChallenge() || *user.OTPCode != code || c.now().After(*user.OTPExpiresAt) {
		return errs.ErrInvalidOrExpiredCode
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hash
	user.ClearChallenge()
	return c.users.Save(&user)
}

func (c *Controller) limiter(email string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	lim, ok := c.limiters[email]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute), 3)
		c.limiters[email] = lim
	}
	return lim
}

func generateCode() (string, error) {
	// Uniform in [100000, 999999] so the code is always six digits.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
