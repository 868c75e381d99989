package core

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"
)

// balanceSheetHeader is the column order of both CSV sections. The names and
// their fallback values ("N/A", "Unknown", "0") are load-bearing: downstream
// consumers of the exported sheet parse them as-is.
var balanceSheetHeader = []string{"description", "amount", "createdBy", "participants", "splitMethod", "created_at"}

// GenerateBalanceSheet renders a two-section CSV balance sheet.
//
// Section one holds the target user's expenses, showing only that user's own
// owed amount. Section two, present only when allExpenses is non-empty, lists
// every expense with every participant's owed amount. The sections are joined
// by two blank lines around the literal header "Overall Expenses".
func GenerateBalanceSheet(userExpenses, allExpenses []Expense, userEmail string) (string, error) {
	individual, err := writeSection(userExpenses, func(e Expense) string {
		owed := "0"
		for _, p := range e.Participants {
			if p.User.Email == userEmail {
				owed = p.AmountOwed.StringFixed(2)
				break
			}
		}
		return fmt.Sprintf("You - Owed: %s", owed)
	})
	if err != nil {
		return "", fmt.Errorf("individual section: %w", err)
	}

	if len(allExpenses) == 0 {
		return individual, nil
	}

	overall, err := writeSection(allExpenses, summarizeParticipants)
	if err != nil {
		return "", fmt.Errorf("overall section: %w", err)
	}

	return individual + "\n\nOverall Expenses\n\n" + overall, nil
}

func summarizeParticipants(e Expense) string {
	if len(e.Participants) == 0 {
		return "No participants"
	}
	parts := make([]string, len(e.Participants))
	for i, p := range e.Participants {
		name := p.User.Name
		if name == "" {
			name = "Unknown"
		}
		email := p.User.Email
		if email == "" {
			email = "Unknown"
		}
		parts[i] = fmt.Sprintf("%s (%s) - Owed: %s", name, email, p.AmountOwed.StringFixed(2))
	}
	return strings.Join(parts, ", ")
}

func writeSection(expenses []Expense, participantsCell func(Expense) string) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(balanceSheetHeader); err != nil {
		return "", err
	}
	for _, e := range expenses {
		if err := w.Write([]string{
			orDefault(e.Description, "N/A"),
			amountCell(e),
			orDefault(e.CreatedBy.Name, "Unknown"),
			participantsCell(e),
			orDefault(string(e.SplitMethod), "N/A"),
			createdAtCell(e.CreatedAt),
		}); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}

func amountCell(e Expense) string {
	if e.Amount.IsZero() {
		return "0"
	}
	return e.Amount.String()
}

func createdAtCell(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format(time.RFC3339)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
