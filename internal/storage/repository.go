// Package storage provides the SQLite-backed repository for accounts and
// expenses.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"divvy/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateAccount inserts a new user account.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, account *core.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, mobile, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID, account.Name, account.Email, account.Mobile,
		account.PasswordHash, account.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "Account created",
		"user_id", account.ID,
		"email", account.Email)
	return nil
}

// GetAccountByEmail returns the account with the given email, or (nil, nil)
// when it does not exist.
func (r *SQLiteRepository) GetAccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	return r.getAccount(ctx, "email = ?", email)
}

// GetAccountByID returns the account with the given id, or (nil, nil) when it
// does not exist.
func (r *SQLiteRepository) GetAccountByID(ctx context.Context, id string) (*core.Account, error) {
	return r.getAccount(ctx, "id = ?", id)
}

func (r *SQLiteRepository) getAccount(ctx context.Context, where string, arg any) (*core.Account, error) {
	account := &core.Account{}
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, mobile, password_hash, created_at FROM users WHERE `+where,
		arg,
	).Scan(&account.ID, &account.Name, &account.Email, &account.Mobile, &account.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	account.CreatedAt = time.Unix(createdAt, 0).UTC()
	return account, nil
}

// CreateExpense persists the expense and its participant shares in one
// transaction. The user back-reference rows are a separate write
// (AppendExpenseToUsers); a crash between the two leaves partial state that
// the repair worker cleans up.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e *core.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, split_method, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount.String(), string(e.SplitMethod), e.CreatedBy.ID, e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	for i, p := range e.Participants {
		var pct any
		if p.Percentage != nil {
			pct = *p.Percentage
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_participants (expense_id, user_id, position, amount_owed, percentage)
			 VALUES (?, ?, ?, ?, ?)`,
			e.ID, p.User.ID, i, p.AmountOwed.String(), pct,
		)
		if err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"split_method", string(e.SplitMethod),
		"participants", len(e.Participants))
	return nil
}

// AppendExpenseToUsers records the expense on each participant's
// back-reference list. INSERT OR IGNORE keeps the write idempotent so the
// repair worker can replay it.
func (r *SQLiteRepository) AppendExpenseToUsers(ctx context.Context, userIDs []string, expenseID string) error {
	for _, id := range userIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_expenses (user_id, expense_id) VALUES (?, ?)`,
			id, expenseID,
		)
		if err != nil {
			return fmt.Errorf("append expense %s to user %s: %w", expenseID, id, err)
		}
	}
	return nil
}

// ListExpensesByParticipant returns every expense the user participates in,
// with resolved participant and creator display data, ordered by creation
// time.
func (r *SQLiteRepository) ListExpensesByParticipant(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.description, e.amount, e.split_method, e.created_at,
		        c.id, c.name, c.email, c.mobile
		 FROM expenses e
		 JOIN users c ON c.id = e.created_by
		 JOIN expense_participants ep ON ep.expense_id = e.id
		 WHERE ep.user_id = ?
		 ORDER BY e.created_at, e.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query expenses by participant: %w", err)
	}
	defer rows.Close()

	return r.collectExpenses(ctx, rows)
}

// ListExpenses returns a page of all expenses in creation order using
// skip/limit pagination.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, skip, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.description, e.amount, e.split_method, e.created_at,
		        c.id, c.name, c.email, c.mobile
		 FROM expenses e
		 JOIN users c ON c.id = e.created_by
		 ORDER BY e.created_at, e.id
		 LIMIT ? OFFSET ?`,
		limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	return r.collectExpenses(ctx, rows)
}

func (r *SQLiteRepository) collectExpenses(ctx context.Context, rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		var (
			e         core.Expense
			amount    string
			method    string
			createdAt int64
		)
		if err := rows.Scan(
			&e.ID, &e.Description, &amount, &method, &createdAt,
			&e.CreatedBy.ID, &e.CreatedBy.Name, &e.CreatedBy.Email, &e.CreatedBy.Mobile,
		); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount for expense %s: %w", e.ID, err)
		}
		e.Amount = parsed
		e.SplitMethod = core.SplitMethod(method)
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	for i := range expenses {
		participants, err := r.loadParticipants(ctx, expenses[i].ID)
		if err != nil {
			return nil, err
		}
		expenses[i].Participants = participants
	}
	return expenses, nil
}

func (r *SQLiteRepository) loadParticipants(ctx context.Context, expenseID string) ([]core.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, u.mobile, ep.amount_owed, ep.percentage
		 FROM expense_participants ep
		 JOIN users u ON u.id = ep.user_id
		 WHERE ep.expense_id = ?
		 ORDER BY ep.position`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var participants []core.Participant
	for rows.Next() {
		var (
			p    core.Participant
			owed string
			pct  sql.NullInt64
		)
		if err := rows.Scan(&p.User.ID, &p.User.Name, &p.User.Email, &p.User.Mobile, &owed, &pct); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		parsed, err := decimal.NewFromString(owed)
		if err != nil {
			return nil, fmt.Errorf("parse owed amount: %w", err)
		}
		p.AmountOwed = parsed
		if pct.Valid {
			v := int(pct.Int64)
			p.Percentage = &v
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return participants, nil
}
