package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"divvy/internal/core"
)

type fakeStore struct {
	byEmail map[string]*core.Account
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmail: make(map[string]*core.Account)}
}

func (s *fakeStore) CreateAccount(_ context.Context, account *core.Account) error {
	s.byEmail[account.Email] = account
	return nil
}

func (s *fakeStore) GetAccountByEmail(_ context.Context, email string) (*core.Account, error) {
	return s.byEmail[email], nil
}

func (s *fakeStore) GetAccountByID(_ context.Context, id string) (*core.Account, error) {
	for _, a := range s.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func registration() Registration {
	return Registration{
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Mobile:          "5551234567",
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	store := newFakeStore()
	a := NewPasswordAuthenticator(store)

	account, err := a.Register(context.Background(), registration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.ID == "" {
		t.Fatal("expected generated account ID")
	}
	if account.PasswordHash == "secret1" {
		t.Fatal("password stored unhashed")
	}

	got, err := a.Authenticate(context.Background(), "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != account.ID {
		t.Fatalf("expected account %s, got %s", account.ID, got.ID)
	}

	if _, err := a.Authenticate(context.Background(), "alice@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.Authenticate(context.Background(), "nobody@example.com", "secret1"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Registration)
		want   error
	}{
		{"missing name", func(r *Registration) { r.Name = "" }, ErrMissingFields},
		{"mismatched passwords", func(r *Registration) { r.ConfirmPassword = "other1" }, ErrPasswordMismatch},
		{"short password", func(r *Registration) { r.Password = "abc"; r.ConfirmPassword = "abc" }, ErrWeakPassword},
		{"bad email", func(r *Registration) { r.Email = "not-an-email" }, ErrInvalidEmail},
		{"bad mobile", func(r *Registration) { r.Mobile = "12345" }, ErrInvalidMobile},
	}
	for _, tc := range cases {
		reg := registration()
		tc.mutate(&reg)
		_, err := NewPasswordAuthenticator(newFakeStore()).Register(context.Background(), reg)
		if err != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

type failingStore struct {
	*fakeStore
	lookupErr error
}

func (s *failingStore) GetAccountByEmail(_ context.Context, _ string) (*core.Account, error) {
	return nil, s.lookupErr
}

func TestRegisterStoreLookupFailure(t *testing.T) {
	store := &failingStore{fakeStore: newFakeStore(), lookupErr: errors.New("db down")}
	a := NewPasswordAuthenticator(store)

	_, err := a.Register(context.Background(), registration())
	if err == nil {
		t.Fatal("expected lookup failure to abort registration")
	}
	if !errors.Is(err, store.lookupErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if len(store.byEmail) != 0 {
		t.Fatal("no account must be created when the lookup fails")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	a := NewPasswordAuthenticator(store)
	if _, err := a.Register(context.Background(), registration()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := a.Register(context.Background(), registration()); err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour)
	account := &core.Account{ID: "u1", Email: "alice@example.com"}

	token, err := m.Generate(account)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "alice@example.com" {
		t.Fatalf("wrong claims: %+v", claims)
	}
}

func TestJWTRejectsExpiredAndTampered(t *testing.T) {
	m := NewJWTManager("0123456789abcdef0123456789abcdef", -time.Minute)
	token, err := m.Generate(&core.Account{ID: "u1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.Validate(token); err == nil {
		t.Fatal("expected expired token to fail validation")
	}

	fresh := NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour)
	token, err = fresh.Generate(&core.Account{ID: "u1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	tampered := strings.TrimSuffix(token, "=") + "x"
	if _, err := fresh.Validate(tampered); err == nil {
		t.Fatal("expected tampered token to fail validation")
	}

	other := NewJWTManager("another-secret-key-entirely-0000", time.Hour)
	if _, err := other.Validate(token); err == nil {
		t.Fatal("expected wrong-key validation to fail")
	}
}
