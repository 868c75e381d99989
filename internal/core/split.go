// Package core implements the expense-splitting domain: the split
// calculator, the per-user and global ledger views, and the balance-sheet
// CSV exporter. Everything in this package is pure computation over already
// resolved input; persistence and user resolution live behind the service
// layer's ports.
package core

import (
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// SplitInput is one participant entry of a create-expense request, already
// resolved to a user. AmountOwed is consulted only for exact splits,
// Percentage only for percentage splits.
type SplitInput struct {
	User       UserInfo
	AmountOwed *decimal.Decimal
	Percentage *int
}

// ComputeSplits turns (amount, participants, method) into the per-participant
// owed amounts.
//
// equal: every share is round(amount/count, 2). When count does not divide
// evenly the shares may sum to a few cents off the total; that drift is
// preserved, not reconciled against the total.
//
// exact: the supplied amounts must sum to the total exactly, no tolerance.
//
// percentage: integer percentages in [0,100] that must sum to exactly 100;
// each share is round(amount*pct/100, 2).
func ComputeSplits(amount decimal.Decimal, participants []SplitInput, method SplitMethod) ([]Participant, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	switch method {
	case SplitEqual:
		return splitEqual(amount, participants), nil
	case SplitExact:
		return splitExact(amount, participants)
	case SplitPercentage:
		return splitPercentage(amount, participants)
	default:
		return nil, NewValidationError("unknown split method %q", string(method))
	}
}

func splitEqual(amount decimal.Decimal, participants []SplitInput) []Participant {
	share := amount.Div(decimal.NewFromInt(int64(len(participants)))).Round(2)
	out := make([]Participant, len(participants))
	for i, p := range participants {
		out[i] = Participant{User: p.User, AmountOwed: share}
	}
	return out
}

func splitExact(amount decimal.Decimal, participants []SplitInput) ([]Participant, error) {
	total := decimal.Zero
	out := make([]Participant, len(participants))
	for i, p := range participants {
		if p.AmountOwed == nil {
			return nil, ErrMissingOwedAmount
		}
		if p.AmountOwed.IsNegative() {
			return nil, NewValidationError("amount owed for %s must not be negative", p.User.Email)
		}
		total = total.Add(*p.AmountOwed)
		out[i] = Participant{User: p.User, AmountOwed: *p.AmountOwed}
	}
	if !total.Equal(amount) {
		return nil, NewValidationError("Exact amounts must add up to the total amount: %s", amount.String())
	}
	return out, nil
}

func splitPercentage(amount decimal.Decimal, participants []SplitInput) ([]Participant, error) {
	totalPct := 0
	for _, p := range participants {
		if p.Percentage == nil {
			return nil, ErrMissingPercentage
		}
		if *p.Percentage < 0 || *p.Percentage > 100 {
			return nil, NewValidationError("Invalid percentage for %s. Must be an integer between 0 and 100.", p.User.Email)
		}
		totalPct += *p.Percentage
	}
	if totalPct != 100 {
		return nil, NewValidationError("Percentages must add up to 100%%")
	}

	out := make([]Participant, len(participants))
	for i, p := range participants {
		pct := *p.Percentage
		owed := amount.Mul(decimal.NewFromInt(int64(pct))).Div(oneHundred).Round(2)
		out[i] = Participant{User: p.User, AmountOwed: owed, Percentage: &pct}
	}
	return out, nil
}
