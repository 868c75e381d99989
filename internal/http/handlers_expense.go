package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"divvy/internal/core"
	"divvy/internal/services"
)

type participantResponse struct {
	User       userResponse `json:"user"`
	AmountOwed string       `json:"amountOwed"`
	Percentage *int         `json:"percentage,omitempty"`
}

type expenseResponse struct {
	ID           string                `json:"id"`
	Description  string                `json:"description"`
	Amount       string                `json:"amount"`
	SplitMethod  string                `json:"splitMethod"`
	CreatedBy    userResponse          `json:"createdBy"`
	Participants []participantResponse `json:"participants"`
	CreatedAt    time.Time             `json:"createdAt"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	participants := make([]participantResponse, len(e.Participants))
	for i, p := range e.Participants {
		participants[i] = participantResponse{
			User: userResponse{
				ID:     p.User.ID,
				Name:   p.User.Name,
				Email:  p.User.Email,
				Mobile: p.User.Mobile,
			},
			AmountOwed: p.AmountOwed.StringFixed(2),
			Percentage: p.Percentage,
		}
	}
	return expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount.String(),
		SplitMethod: string(e.SplitMethod),
		CreatedBy: userResponse{
			ID:     e.CreatedBy.ID,
			Name:   e.CreatedBy.Name,
			Email:  e.CreatedBy.Email,
			Mobile: e.CreatedBy.Mobile,
		},
		Participants: participants,
		CreatedAt:    e.CreatedAt,
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Description  string          `json:"description"`
		Amount       decimal.Decimal `json:"amount"`
		SplitMethod  string          `json:"splitMethod"`
		Participants []struct {
			Email      string           `json:"email"`
			AmountOwed *decimal.Decimal `json:"amountOwed,omitempty"`
			Percentage *int             `json:"percentage,omitempty"`
		} `json:"participants"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.CreateExpenseInput{
		Description: req.Description,
		Amount:      req.Amount,
		SplitMethod: core.SplitMethod(req.SplitMethod),
		CreatedByID: GetUserID(r.Context()),
	}
	for _, p := range req.Participants {
		in.Participants = append(in.Participants, services.ParticipantInput{
			Email:      p.Email,
			AmountOwed: p.AmountOwed,
			Percentage: p.Percentage,
		})
	}

	expense, err := s.expenses.CreateExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Cached listing pages are stale now.
	s.listingCache.Purge()

	writeJSON(w, http.StatusCreated, struct {
		Message string          `json:"message"`
		Expense expenseResponse `json:"expense"`
	}{
		Message: "Expense created successfully",
		Expense: toExpenseResponse(*expense),
	})
}

func (s *Server) handleUserExpenses(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	rows, err := s.expenses.GetUserExpenses(r.Context(), GetEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Expenses []core.UserExpenseRow `json:"expenses"`
	}{Expenses: rows})
}

func (s *Server) handleAllExpenses(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", s.defaultPageSize)
	key := fmt.Sprintf("%d-%d", page, pageSize)

	expenses, cached := s.listingCache.Get(key)
	if !cached {
		var err error
		expenses, err = s.expenses.ListAllExpenses(r.Context(), page, pageSize)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.listingCache.Set(key, expenses)
	}

	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e)
	}

	writeJSON(w, http.StatusOK, struct {
		Expenses []expenseResponse `json:"expenses"`
		Page     int               `json:"page"`
		PageSize int               `json:"pageSize"`
	}{Expenses: out, Page: page, PageSize: pageSize})
}

func (s *Server) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	sheet, err := s.expenses.BalanceSheetCSV(r.Context(), GetEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="balance_sheet.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sheet))
}
