package worker

import (
	"context"
	"fmt"
	"log/slog"

	"divvy/internal/amqp"
	"divvy/internal/core"
)

// BackrefStore is the slice of storage the repair worker needs.
type BackrefStore interface {
	AppendExpenseToUsers(ctx context.Context, userIDs []string, expenseID string) error
	ListExpenses(ctx context.Context, skip, limit int) ([]core.Expense, error)
}

// RepairWorker re-applies the per-user expense back-references announced by
// expense-created events. The API writes them inline; the worker replays the
// same write so a crash between the two inserts cannot leave the back-reference
// ledger missing an entry. Both paths are idempotent.
type RepairWorker struct {
	store     BackrefStore
	batchSize int
}

func NewRepairWorker(store BackrefStore, batchSize int) *RepairWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &RepairWorker{store: store, batchSize: batchSize}
}

// HandleExpenseCreated processes a single expense-created message from AMQP.
func (w *RepairWorker) HandleExpenseCreated(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error {
	slog.InfoContext(ctx, "Repairing expense back-references",
		"expense_id", msg.ExpenseID,
		"participants", len(msg.ParticipantIDs))

	if len(msg.ParticipantIDs) == 0 {
		slog.WarnContext(ctx, "Expense created message has no participants",
			"expense_id", msg.ExpenseID)
		return nil
	}

	if err := w.store.AppendExpenseToUsers(ctx, msg.ParticipantIDs, msg.ExpenseID); err != nil {
		return fmt.Errorf("append expense to users: %w", err)
	}

	return nil
}

// StartupRepairSweep replays back-reference writes for every stored expense.
// This recovers from missed AMQP messages or worker downtime.
func (w *RepairWorker) StartupRepairSweep(ctx context.Context) error {
	skip := 0
	repaired := 0
	errorCount := 0

	for {
		expenses, err := w.store.ListExpenses(ctx, skip, w.batchSize)
		if err != nil {
			return fmt.Errorf("list expenses for startup sweep: %w", err)
		}
		if len(expenses) == 0 {
			break
		}

		for _, e := range expenses {
			ids := make([]string, 0, len(e.Participants))
			for _, p := range e.Participants {
				ids = append(ids, p.User.ID)
			}
			if len(ids) == 0 {
				continue
			}
			if err := w.store.AppendExpenseToUsers(ctx, ids, e.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to repair expense during startup sweep",
					"expense_id", e.ID, "error", err)
				errorCount++
				continue
			}
			repaired++
		}

		skip += len(expenses)
	}

	slog.InfoContext(ctx, "Startup repair sweep completed",
		"total", skip,
		"repaired", repaired,
		"errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("startup sweep finished with %d errors", errorCount)
	}
	return nil
}
