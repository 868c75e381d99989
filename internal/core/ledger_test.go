package core

import (
	"testing"
	"time"
)

func sampleExpense(method SplitMethod, parts []Participant) Expense {
	return Expense{
		ID:           "e1",
		Description:  "Dinner",
		Amount:       dec("100"),
		SplitMethod:  method,
		CreatedBy:    user("a", "Alice", "alice@example.com"),
		Participants: parts,
		CreatedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUserView(t *testing.T) {
	expenses := []Expense{
		sampleExpense(SplitEqual, []Participant{
			{User: user("a", "Alice", "alice@example.com"), AmountOwed: dec("50")},
			{User: user("b", "Bob", "bob@example.com"), AmountOwed: dec("50")},
		}),
	}

	rows := UserView("b", expenses)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Description != "Dinner" {
		t.Fatalf("wrong description: %s", row.Description)
	}
	if row.AmountOwed != "50.00" {
		t.Fatalf("expected own share 50.00, got %s", row.AmountOwed)
	}
	if row.Percentage != nil {
		t.Fatalf("percentage must be omitted for equal splits")
	}
	if len(row.Participants) != 2 || row.Participants[0] != "Alice" || row.Participants[1] != "Bob" {
		t.Fatalf("wrong participant names: %v", row.Participants)
	}
}

func TestUserViewIncludesPercentageOnlyForPercentageSplits(t *testing.T) {
	expenses := []Expense{
		sampleExpense(SplitPercentage, []Participant{
			{User: user("a", "Alice", "alice@example.com"), AmountOwed: dec("70"), Percentage: intPtr(70)},
			{User: user("b", "Bob", "bob@example.com"), AmountOwed: dec("30"), Percentage: intPtr(30)},
		}),
	}

	rows := UserView("a", expenses)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Percentage == nil || *rows[0].Percentage != 70 {
		t.Fatalf("expected percentage 70, got %v", rows[0].Percentage)
	}
}

func TestUserViewSkipsUnmatchedExpenses(t *testing.T) {
	expenses := []Expense{
		sampleExpense(SplitEqual, []Participant{
			{User: user("a", "Alice", "alice@example.com"), AmountOwed: dec("100")},
		}),
	}
	if rows := UserView("c", expenses); len(rows) != 0 {
		t.Fatalf("expected no rows for non-participant, got %d", len(rows))
	}
}

func TestPageOffset(t *testing.T) {
	cases := []struct {
		page, size  int
		skip, limit int
	}{
		{1, 10, 0, 10},
		{2, 10, 10, 10},
		{3, 25, 50, 25},
		{0, 10, 0, 10},  // page defaults to 1
		{1, 0, 0, 10},   // size defaults to 10
		{-4, -1, 0, 10}, // both default
	}
	for _, tc := range cases {
		skip, limit := PageOffset(tc.page, tc.size)
		if skip != tc.skip || limit != tc.limit {
			t.Fatalf("page=%d size=%d: expected (%d,%d), got (%d,%d)",
				tc.page, tc.size, tc.skip, tc.limit, skip, limit)
		}
	}
}
