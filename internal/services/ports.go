package services

import (
	"context"

	"divvy/internal/core"
)

// AccountStore resolves accounts for expense participants.
type AccountStore interface {
	GetAccountByEmail(ctx context.Context, email string) (*core.Account, error)
	GetAccountByID(ctx context.Context, id string) (*core.Account, error)
}

// ExpenseStore persists expenses and their per-user back-references.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *core.Expense) error
	AppendExpenseToUsers(ctx context.Context, userIDs []string, expenseID string) error
	ListExpensesByParticipant(ctx context.Context, userID string) ([]core.Expense, error)
	ListExpenses(ctx context.Context, skip, limit int) ([]core.Expense, error)
	Close() error
}

// EventPublisher announces stored expenses to the repair worker.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, expenseID string, participantIDs []string) error
	Close() error
}
