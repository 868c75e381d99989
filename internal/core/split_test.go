package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func user(id, name, email string) UserInfo {
	return UserInfo{ID: id, Name: name, Email: email}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int) *int { return &n }

func TestComputeSplitsEqual(t *testing.T) {
	cases := []struct {
		amount string
		count  int
		share  string
	}{
		{"100", 2, "50"},
		{"100", 3, "33.33"}, // drift of 0.01 against the total is preserved
		{"99.99", 3, "33.33"},
		{"0.01", 2, "0.01"},
	}
	for _, tc := range cases {
		parts := make([]SplitInput, tc.count)
		for i := range parts {
			parts[i] = SplitInput{User: user("u", "U", "u@example.com")}
		}
		shares, err := ComputeSplits(dec(tc.amount), parts, SplitEqual)
		if err != nil {
			t.Fatalf("amount=%s count=%d: unexpected error %v", tc.amount, tc.count, err)
		}
		if len(shares) != tc.count {
			t.Fatalf("amount=%s: expected %d shares, got %d", tc.amount, tc.count, len(shares))
		}
		for i, s := range shares {
			if !s.AmountOwed.Equal(dec(tc.share)) {
				t.Fatalf("amount=%s share %d: expected %s, got %s", tc.amount, i, tc.share, s.AmountOwed)
			}
		}
	}
}

func TestComputeSplitsExact(t *testing.T) {
	parts := []SplitInput{
		{User: user("a", "A", "a@example.com"), AmountOwed: decPtr("60")},
		{User: user("b", "B", "b@example.com"), AmountOwed: decPtr("40")},
	}
	shares, err := ComputeSplits(dec("100"), parts, SplitExact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !shares[0].AmountOwed.Equal(dec("60")) || !shares[1].AmountOwed.Equal(dec("40")) {
		t.Fatalf("amounts changed: %s, %s", shares[0].AmountOwed, shares[1].AmountOwed)
	}
}

func TestComputeSplitsExactMismatch(t *testing.T) {
	parts := []SplitInput{
		{User: user("a", "A", "a@example.com"), AmountOwed: decPtr("60")},
		{User: user("b", "B", "b@example.com"), AmountOwed: decPtr("30")},
	}
	_, err := ComputeSplits(dec("100"), parts, SplitExact)
	if err == nil {
		t.Fatal("expected error for mismatched exact amounts")
	}
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	want := "Exact amounts must add up to the total amount: 100"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestComputeSplitsExactMissingAmount(t *testing.T) {
	parts := []SplitInput{
		{User: user("a", "A", "a@example.com"), AmountOwed: decPtr("100")},
		{User: user("b", "B", "b@example.com")},
	}
	_, err := ComputeSplits(dec("100"), parts, SplitExact)
	if err != ErrMissingOwedAmount {
		t.Fatalf("expected ErrMissingOwedAmount, got %v", err)
	}
}

func TestComputeSplitsPercentage(t *testing.T) {
	parts := []SplitInput{
		{User: user("a", "A", "a@example.com"), Percentage: intPtr(70)},
		{User: user("b", "B", "b@example.com"), Percentage: intPtr(30)},
	}
	shares, err := ComputeSplits(dec("100"), parts, SplitPercentage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !shares[0].AmountOwed.Equal(dec("70")) || !shares[1].AmountOwed.Equal(dec("30")) {
		t.Fatalf("wrong shares: %s, %s", shares[0].AmountOwed, shares[1].AmountOwed)
	}
	if shares[0].Percentage == nil || *shares[0].Percentage != 70 {
		t.Fatalf("expected percentage 70 on first share")
	}
}

func TestComputeSplitsPercentageRounds(t *testing.T) {
	parts := []SplitInput{
		{User: user("a", "A", "a@example.com"), Percentage: intPtr(33)},
		{User: user("b", "B", "b@example.com"), Percentage: intPtr(67)},
	}
	shares, err := ComputeSplits(dec("99.99"), parts, SplitPercentage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := shares[0].AmountOwed.StringFixed(2); got != "33.00" {
		t.Fatalf("expected 33.00, got %s", got)
	}
}

func TestComputeSplitsPercentageMismatch(t *testing.T) {
	parts := []SplitInput{
		{User: user("a", "A", "a@example.com"), Percentage: intPtr(70)},
		{User: user("b", "B", "b@example.com"), Percentage: intPtr(20)},
	}
	_, err := ComputeSplits(dec("100"), parts, SplitPercentage)
	if err == nil || !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := "Percentages must add up to 100%"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestComputeSplitsPercentageOutOfRange(t *testing.T) {
	cases := []int{-1, 101}
	for _, pct := range cases {
		parts := []SplitInput{
			{User: user("a", "A", "a@example.com"), Percentage: intPtr(pct)},
			{User: user("b", "B", "b@example.com"), Percentage: intPtr(100 - pct)},
		}
		_, err := ComputeSplits(dec("100"), parts, SplitPercentage)
		if err == nil || !IsValidation(err) {
			t.Fatalf("pct=%d: expected ValidationError, got %v", pct, err)
		}
	}
}

func TestComputeSplitsRejectsBadInput(t *testing.T) {
	one := []SplitInput{{User: user("a", "A", "a@example.com")}}

	if _, err := ComputeSplits(dec("0"), one, SplitEqual); err != ErrInvalidAmount {
		t.Fatalf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ComputeSplits(dec("-5"), one, SplitEqual); err != ErrInvalidAmount {
		t.Fatalf("negative amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ComputeSplits(dec("10"), nil, SplitEqual); err != ErrNoParticipants {
		t.Fatalf("no participants: expected ErrNoParticipants, got %v", err)
	}
	if _, err := ComputeSplits(dec("10"), one, SplitMethod("weighted")); err == nil || !IsValidation(err) {
		t.Fatalf("unknown method: expected ValidationError, got %v", err)
	}
}
