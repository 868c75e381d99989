package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"divvy/internal/core"
)

// listBatchSize is the page size used when walking the whole ledger.
const listBatchSize = 100

// ParticipantInput names a participant by email, with the per-method extras.
type ParticipantInput struct {
	Email      string
	AmountOwed *decimal.Decimal
	Percentage *int
}

// CreateExpenseInput is a create request before account resolution.
type CreateExpenseInput struct {
	Description  string
	Amount       decimal.Decimal
	SplitMethod  core.SplitMethod
	CreatedByID  string
	Participants []ParticipantInput
}

// ExpenseService orchestrates expense operations across storage and AMQP.
type ExpenseService struct {
	accounts  AccountStore
	storage   ExpenseStore
	publisher EventPublisher
}

func NewExpenseService(accounts AccountStore, storage ExpenseStore, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		accounts:  accounts,
		storage:   storage,
		publisher: publisher,
	}
}

// CreateExpense validates the request, resolves every participant email,
// computes the split, and stores the expense. After the store succeeds an
// expense-created event is published so the repair worker can replay the
// per-user back-references; publish failures do not fail the request.
func (s *ExpenseService) CreateExpense(ctx context.Context, in CreateExpenseInput) (*core.Expense, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, core.ErrEmptyDescription
	}
	if !in.Amount.IsPositive() {
		return nil, core.ErrInvalidAmount
	}
	if len(in.Participants) == 0 {
		return nil, core.ErrNoParticipants
	}
	if !in.SplitMethod.Valid() {
		return nil, core.NewValidationError("Invalid split method: %s", in.SplitMethod)
	}

	creator, err := s.accounts.GetAccountByID(ctx, in.CreatedByID)
	if err != nil {
		return nil, fmt.Errorf("resolve creator: %w", err)
	}
	if creator == nil {
		return nil, core.NewNotFoundError("Account %s not found", in.CreatedByID)
	}

	inputs := make([]core.SplitInput, 0, len(in.Participants))
	for _, p := range in.Participants {
		account, err := s.accounts.GetAccountByEmail(ctx, p.Email)
		if err != nil {
			return nil, fmt.Errorf("resolve participant %s: %w", p.Email, err)
		}
		if account == nil {
			return nil, core.NewNotFoundError("User with email %s doesn't exist. Please create an account first.", p.Email)
		}
		inputs = append(inputs, core.SplitInput{
			User:       account.Info(),
			AmountOwed: p.AmountOwed,
			Percentage: p.Percentage,
		})
	}

	participants, err := core.ComputeSplits(in.Amount, inputs, in.SplitMethod)
	if err != nil {
		return nil, err
	}

	expense := &core.Expense{
		Description:  strings.TrimSpace(in.Description),
		Amount:       in.Amount,
		SplitMethod:  in.SplitMethod,
		CreatedBy:    creator.Info(),
		Participants: participants,
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if err := s.storage.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}

	participantIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		participantIDs = append(participantIDs, p.User.ID)
	}

	if err := s.storage.AppendExpenseToUsers(ctx, participantIDs, expense.ID); err != nil {
		// The expense itself is saved; the worker replays the back-reference.
		slog.ErrorContext(ctx, "Failed to append expense to users",
			"expense_id", expense.ID, "error", err)
	}

	if err := s.publishExpenseCreated(ctx, expense.ID, participantIDs); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense created message",
			"expense_id", expense.ID, "error", err)
		// Don't fail the request - expense is saved locally
	}

	return expense, nil
}

// GetUserExpenses lists the expenses an account takes part in, shaped for
// that account's point of view.
func (s *ExpenseService) GetUserExpenses(ctx context.Context, email string) ([]core.UserExpenseRow, error) {
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if account == nil {
		return nil, core.NewNotFoundError("User with email %s doesn't exist. Please create an account first.", email)
	}

	expenses, err := s.storage.ListExpensesByParticipant(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list user expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, core.NewNotFoundError("No expenses found for user %s", email)
	}

	return core.UserView(account.ID, expenses), nil
}

// ListAllExpenses returns one page of the global ledger.
func (s *ExpenseService) ListAllExpenses(ctx context.Context, page, pageSize int) ([]core.Expense, error) {
	skip, limit := core.PageOffset(page, pageSize)

	expenses, err := s.storage.ListExpenses(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, core.NewNotFoundError("No expenses found")
	}

	return expenses, nil
}

// BalanceSheetCSV renders the two-section balance sheet for an account.
func (s *ExpenseService) BalanceSheetCSV(ctx context.Context, email string) (string, error) {
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("resolve user: %w", err)
	}
	if account == nil {
		return "", core.NewNotFoundError("User with email %s doesn't exist. Please create an account first.", email)
	}

	userExpenses, err := s.storage.ListExpensesByParticipant(ctx, account.ID)
	if err != nil {
		return "", fmt.Errorf("list user expenses: %w", err)
	}
	if len(userExpenses) == 0 {
		return "", core.NewNotFoundError("No expenses found for this user.")
	}

	allExpenses, err := s.listEverything(ctx)
	if err != nil {
		return "", fmt.Errorf("list all expenses: %w", err)
	}

	sheet, err := core.GenerateBalanceSheet(userExpenses, allExpenses, account.Email)
	if err != nil {
		return "", fmt.Errorf("generate balance sheet: %w", err)
	}

	slog.InfoContext(ctx, "Generated balance sheet",
		"email", account.Email,
		"user_expenses", len(userExpenses),
		"all_expenses", len(allExpenses))

	return sheet, nil
}

func (s *ExpenseService) listEverything(ctx context.Context) ([]core.Expense, error) {
	var all []core.Expense
	skip := 0
	for {
		batch, err := s.storage.ListExpenses(ctx, skip, listBatchSize)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < listBatchSize {
			return all, nil
		}
		skip += len(batch)
	}
}

func (s *ExpenseService) publishExpenseCreated(ctx context.Context, expenseID string, participantIDs []string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping expense created message")
		return nil
	}
	return s.publisher.PublishExpenseCreated(ctx, expenseID, participantIDs)
}

// Close closes both storage and AMQP connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
