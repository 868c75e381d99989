package core

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestGenerateBalanceSheetIndividualSection(t *testing.T) {
	exp := sampleExpense(SplitEqual, []Participant{
		{User: user("a", "Alice", "alice@example.com"), AmountOwed: dec("50")},
		{User: user("b", "Bob", "bob@example.com"), AmountOwed: dec("50")},
	})

	csvText, err := GenerateBalanceSheet([]Expense{exp}, nil, "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(csvText, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines:\n%s", len(lines), csvText)
	}
	if lines[0] != "description,amount,createdBy,participants,splitMethod,created_at" {
		t.Fatalf("wrong header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "You - Owed: 50.00") {
		t.Fatalf("row missing own owed amount: %s", lines[1])
	}
	if strings.Contains(csvText, "Overall Expenses") {
		t.Fatalf("overall section must be absent when allExpenses is empty")
	}
}

func TestGenerateBalanceSheetOverallSection(t *testing.T) {
	exp := sampleExpense(SplitEqual, []Participant{
		{User: user("a", "Alice", "alice@example.com"), AmountOwed: dec("50")},
		{User: user("b", "Bob", "bob@example.com"), AmountOwed: dec("50")},
	})

	csvText, err := GenerateBalanceSheet([]Expense{exp}, []Expense{exp}, "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sections := strings.Split(csvText, "\n\nOverall Expenses\n\n")
	if len(sections) != 2 {
		t.Fatalf("expected two sections joined by the Overall Expenses header:\n%s", csvText)
	}
	if !strings.Contains(sections[1], "Alice (alice@example.com) - Owed: 50.00, Bob (bob@example.com) - Owed: 50.00") {
		t.Fatalf("overall section missing participant summary:\n%s", sections[1])
	}
}

func TestGenerateBalanceSheetDefaults(t *testing.T) {
	// Missing description, creator name, split method and timestamp must keep
	// their historical fallbacks so downstream sheet consumers keep working.
	exp := Expense{
		Amount: decimal.Zero,
		Participants: []Participant{
			{User: UserInfo{ID: "x", Email: "x@example.com"}, AmountOwed: dec("0")},
		},
	}

	csvText, err := GenerateBalanceSheet([]Expense{exp}, []Expense{exp}, "missing@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(csvText, "\n")
	row := lines[1]
	for _, want := range []string{"N/A", "Unknown", "You - Owed: 0"} {
		if !strings.Contains(row, want) {
			t.Fatalf("row missing fallback %q: %s", want, row)
		}
	}
	if !strings.Contains(csvText, "Unknown (x@example.com) - Owed: 0.00") {
		t.Fatalf("overall row missing Unknown name fallback:\n%s", csvText)
	}
}

func TestGenerateBalanceSheetEmptyParticipants(t *testing.T) {
	exp := Expense{Description: "orphan", Amount: dec("10")}
	csvText, err := GenerateBalanceSheet([]Expense{exp}, []Expense{exp}, "a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(csvText, "No participants") {
		t.Fatalf("expected No participants fallback:\n%s", csvText)
	}
}
