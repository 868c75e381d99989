package core

import "time"

// UserExpenseRow is one entry of a user's expense listing: the user's own
// share of an expense plus enough context to display it.
type UserExpenseRow struct {
	Description  string    `json:"description"`
	AmountOwed   string    `json:"amountOwed"`
	Percentage   *int      `json:"percentage,omitempty"`
	Date         time.Time `json:"date"`
	Participants []string  `json:"participants"`
}

// UserView reshapes the expenses a user participates in into per-user rows.
// The owed amount is the user's own share only; the percentage is included
// only for percentage splits. Expenses where the user cannot be matched to a
// participant are skipped.
func UserView(userID string, expenses []Expense) []UserExpenseRow {
	rows := make([]UserExpenseRow, 0, len(expenses))
	for _, e := range expenses {
		var own *Participant
		names := make([]string, len(e.Participants))
		for i := range e.Participants {
			names[i] = e.Participants[i].User.Name
			if e.Participants[i].User.ID == userID {
				own = &e.Participants[i]
			}
		}
		if own == nil {
			continue
		}

		row := UserExpenseRow{
			Description:  e.Description,
			AmountOwed:   own.AmountOwed.StringFixed(2),
			Date:         e.CreatedAt,
			Participants: names,
		}
		if e.SplitMethod == SplitPercentage {
			row.Percentage = own.Percentage
		}
		rows = append(rows, row)
	}
	return rows
}

// PageOffset converts 1-based page/pageSize into a skip offset. Pages below 1
// and non-positive sizes fall back to the first page of ten.
func PageOffset(page, pageSize int) (skip, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return (page - 1) * pageSize, pageSize
}
