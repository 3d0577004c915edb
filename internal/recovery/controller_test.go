package recovery

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/annapurna/internal/errs"
	"github.com/example/annapurna/internal/models"
	"github.com/example/annapurna/internal/utils"
)

type fakeUserStore struct {
	users   map[string]models.User
	saveErr error
	saves   int
}

func newFakeUserStore(emails ...string) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]models.User)}
	for _, email := range emails {
		s.users[email] = models.User{Email: email, PasswordHash: "old-hash"}
	}
	return s
}

func (s *fakeUserStore) FindByEmail(email string) (models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return models.User{}, errs.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) Save(user *models.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.users[user.Email] = *user
	return nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (s *fakeSender) SendOTP(_, code string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, code)
	return nil
}

func newTestController(users UserStore, sender CodeSender, at time.Time) *Controller {
	c := NewController(users, sender, 5*time.Minute)
	c.now = func() time.Time { return at }
	return c
}

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestRequestResetUnknownEmail(t *testing.T) {
	c := newTestController(newFakeUserStore(), &fakeSender{}, time.Now())

	err := c.RequestReset("nobody@x.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRequestResetIssuesChallenge(t *testing.T) {
	store := newFakeUserStore("a@x.com")
	sender := &fakeSender{}
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestController(store, sender, issuedAt)

	require.NoError(t, c.RequestReset("a@x.com"))

	user := store.users["a@x.com"]
	require.True(t, user.HasChallenge())
	assert.Regexp(t, sixDigits, *user.OTPCode)
	assert.Equal(t, issuedAt.Add(5*time.Minute), *user.OTPExpiresAt)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, *user.OTPCode, sender.sent[0])
}

func TestRequestResetOverwritesPreviousChallenge(t *testing.T) {
	store := newFakeUserStore("a@x.com")
	sender := &fakeSender{}
	c := newTestController(store, sender, time.Now())

	require.NoError(t, c.RequestReset("a@x.com"))
	require.NoError(t, c.RequestReset("a@x.com"))

	user := store.users["a@x.com"]
	require.Len(t, sender.sent, 2)
	// Only the last issued code is the valid one.
	assert.Equal(t, sender.sent[1], *user.OTPCode)
}

func TestRequestResetThrottled(t *testing.T) {
	store := newFakeUserStore("a@x.com", "b@x.com")
	c := newTestController(store, &fakeSender{}, time.Now())

	require.NoError(t, c.RequestReset("a@x.com"))
	require.NoError(t, c.RequestReset("a@x.com"))
	require.NoError(t, c.RequestReset("a@x.com"))

	err := c.RequestReset("a@x.com")
	assert.ErrorIs(t, err, errs.ErrRateLimited)

	// Another account is unaffected.
	assert.NoError(t, c.RequestReset("b@x.com"))
}

func TestRequestResetDeliveryFailureKeepsChallenge(t *testing.T) {
	store := newFakeUserStore("a@x.com")
	sender := &fakeSender{err: errors.New("relay down")}
	c := newTestController(store, sender, time.Now())

	err := c.RequestReset("a@x.com")
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	// The code was persisted before the send attempt and stays valid.
	user := store.users["a@x.com"]
	require.True(t, user.HasChallenge())
	assert.NoError(t, c.VerifyAndReset("a@x.com", *user.OTPCode, "newpass"))
}

func TestVerifyAndResetSucceedsExactlyOnce(t *testing.T) {
	store := newFakeUserStore("a@x.com")
	sender := &fakeSender{}
	c := newTestController(store, sender, time.Now())

	require.NoError(t, c.RequestReset("a@x.com"))
	code := sender.sent[0]

	require.NoError(t, c.VerifyAndReset("a@x.com", code, "newpass"))

	user := store.users["a@x.com"]
	assert.False(t, user.HasChallenge())
	assert.True(t, utils.CheckPassword(user.PasswordHash, "newpass"))

	// The challenge was consumed; the same code cannot be replayed.
	err := c.VerifyAndReset("a@x.com", code, "another")
	assert.ErrorIs(t, err, errs.ErrInvalidOrExpiredCode)
}

func TestVerifyAndResetWrongCodeLeavesChallenge(t *testing.T) {
	store := newFakeUserStore("a@x.com")
	sender := &fakeSender{}
	c := newTestController(store, sender, time.Now())

	require.NoError(t, c.RequestReset("a@x.com"))
	code := sender.sent[0]

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err := c.VerifyAndReset("a@x.com", wrong, "newpass")
	assert.ErrorIs(t, err, errs.ErrInvalidOrExpiredCode)

	// The user may retry with the right code until a fresh one is requested.
	assert.NoError(t, c.VerifyAndReset("a@x.com", code, "newpass"))
}

func TestVerifyAndResetExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("accepted just before expiry", func(t *testing.T) {
		store := newFakeUserStore("a@x.com")
		sender := &fakeSender{}
		c := newTestController(store, sender, issuedAt)

		require.NoError(t, c.RequestReset("a@x.com"))
		c.now = func() time.Time { return issuedAt.Add(4*time.Minute + 59*time.Second) }
		assert.NoError(t, c.VerifyAndReset("a@x.com", sender.sent[0], "newpass"))
	})

	t.Run("rejected just after expiry", func(t *testing.T) {
		store := newFakeUserStore("a@x.com")
		sender := &fakeSender{}
		c := newTestController(store, sender, issuedAt)

		require.NoError(t, c.RequestReset("a@x.com"))
		c.now = func() time.Time { return issuedAt.Add(5*time.Minute + time.Second) }
		err := c.VerifyAndReset("a@x.com", sender.sent[0], "newpass")
		assert.ErrorIs(t, err, errs.ErrInvalidOrExpiredCode)
	})
}

func TestVerifyAndResetUnknownEmail(t *testing.T) {
	c := newTestController(newFakeUserStore(), &fakeSender{}, time.Now())

	err := c.VerifyAndReset("nobody@x.com", "123456", "newpass")
	assert.ErrorIs(t, err, errs.ErrInvalidOrExpiredCode)
}

func TestVerifyAndResetWithoutChallenge(t *testing.T) {
	c := newTestController(newFakeUserStore("a@x.com"), &fakeSender{}, time.Now())

	err := c.VerifyAndReset("a@x.com", "123456", "newpass")
	assert.ErrorIs(t, err, errs.ErrInvalidOrExpiredCode)
}

func TestValidationBeforeAnyLookup(t *testing.T) {
	c := newTestController(newFakeUserStore("a@x.com"), &fakeSender{}, time.Now())

	assert.True(t, errs.IsValidation(c.RequestReset("")))
	assert.True(t, errs.IsValidation(c.VerifyAndReset("", "123456", "x")))
	assert.True(t, errs.IsValidation(c.VerifyAndReset("a@x.com", "", "x")))
	assert.True(t, errs.IsValidation(c.VerifyAndReset("a@x.com", "123456", "")))
}

func TestGeneratedCodesAreSixDigitsInRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}
