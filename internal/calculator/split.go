package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Expense is the minimal view of an expense needed to compute shares.
type Expense struct {
	Amount       decimal.Decimal
	PaidBy       string
	Participants []string

	// Exact, when non-empty, assigns each participant an explicit share.
	// The shares must add up to Amount.
	Exact map[string]decimal.Decimal
}

// CalculateShares computes how much each participant owes for one expense.
// Equal splits divide Amount by the number of participants; exact splits use
// the given amounts.
func CalculateShares(e Expense) (map[string]decimal.Decimal, error) {
	if !e.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if len(e.Participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	shares := make(map[string]decimal.Decimal, len(e.Participants))

	if len(e.Exact) == 0 {
		per := e.Amount.Div(decimal.NewFromInt(int64(len(e.Participants))))
		for _, p := range e.Participants {
			shares[p] = shares[p].Add(per)
		}
		return shares, nil
	}

	sum := decimal.Zero
	for _, p := range e.Participants {
		amt, ok := e.Exact[p]
		if !ok {
			return nil, fmt.Errorf("missing exact amount for %s", p)
		}
		if amt.IsNegative() {
			return nil, fmt.Errorf("exact amount for %s cannot be negative", p)
		}
		shares[p] = amt
		sum = sum.Add(amt)
	}
	for p := range e.Exact {
		if _, ok := shares[p]; !ok {
			return nil, fmt.Errorf("exact amount given for non-participant %s", p)
		}
	}
	if !sum.Equal(e.Amount) {
		return nil, fmt.Errorf("exact amounts add up to %s, expected %s", sum.String(), e.Amount.String())
	}
	return shares, nil
}
