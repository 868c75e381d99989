// Package auth provides password registration/login backed by bcrypt and
// stateless JWT session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"divvy/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmailExists        = errors.New("username already taken")
	ErrPasswordMismatch   = errors.New("passwords don't match")
	ErrMissingFields      = errors.New("all fields are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidMobile      = errors.New("mobile must be a 10-digit number")
)

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobileRe = regexp.MustCompile(`^\d{10}$`)
)

// AccountStore is the persistence surface the authenticator needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *core.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*core.Account, error)
	GetAccountByID(ctx context.Context, id string) (*core.Account, error)
}

// Registration is a signup request before validation.
type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Mobile          string
}

func (r Registration) validate() error {
	if r.Name == "" || r.Email == "" || r.Password == "" || r.ConfirmPassword == "" || r.Mobile == "" {
		return ErrMissingFields
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(r.Password) < 6 {
		return ErrWeakPassword
	}
	if !emailRe.MatchString(r.Email) {
		return ErrInvalidEmail
	}
	if !mobileRe.MatchString(r.Mobile) {
		return ErrInvalidMobile
	}
	return nil
}

// PasswordAuthenticator implements password-based registration and login
// using bcrypt hashes.
type PasswordAuthenticator struct {
	store AccountStore
}

func NewPasswordAuthenticator(store AccountStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{store: store}
}

// Register creates a new account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, reg Registration) (*core.Account, error) {
	if err := reg.validate(); err != nil {
		return nil, err
	}

	existing, err := a.store.GetAccountByEmail(ctx, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &core.Account{
		ID:           uuid.New().String(),
		Name:         reg.Name,
		Email:        reg.Email,
		Mobile:       reg.Mobile,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

// Authenticate verifies email and password, returning the account if valid.
// Failures are collapsed into ErrInvalidCredentials so callers cannot probe
// which emails exist.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*core.Account, error) {
	account, err := a.store.GetAccountByEmail(ctx, email)
	if err != nil || account == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}
