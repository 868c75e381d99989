package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SplitEqual      SplitMethod = "equal"
	SplitExact      SplitMethod = "exact"
	SplitPercentage SplitMethod = "percentage"
)

type (
	// SplitMethod is the strategy for dividing an expense among participants.
	SplitMethod string

	// UserInfo is the resolved display identity of a user. The core never
	// creates or authenticates users, it only consumes these references.
	UserInfo struct {
		ID     string
		Name   string
		Email  string
		Mobile string
	}

	// Participant is one user's share of an expense. Percentage is set only
	// for percentage splits. Immutable once the expense is created.
	Participant struct {
		User       UserInfo
		AmountOwed decimal.Decimal
		Percentage *int
	}

	// Account is a registered user with credentials. The expense core only
	// ever sees its Info projection.
	Account struct {
		ID           string
		Name         string
		Email        string
		Mobile       string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Expense is a shared expense with resolved participant and creator
	// identities. Created once; never edited or deleted.
	Expense struct {
		ID           string
		Description  string
		Amount       decimal.Decimal
		SplitMethod  SplitMethod
		CreatedBy    UserInfo
		Participants []Participant
		CreatedAt    time.Time
	}
)

// Info returns the display projection of the account.
func (a Account) Info() UserInfo {
	return UserInfo{ID: a.ID, Name: a.Name, Email: a.Email, Mobile: a.Mobile}
}

// Valid reports whether the method is one of the three supported strategies.
func (m SplitMethod) Valid() bool {
	switch m {
	case SplitEqual, SplitExact, SplitPercentage:
		return true
	}
	return false
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if len(e.Participants) == 0 {
		return ErrNoParticipants
	}
	if !e.SplitMethod.Valid() {
		return NewValidationError("unknown split method %q", string(e.SplitMethod))
	}
	return nil
}
