package models

import "github.com/shopspring/decimal"

// SplitType selects how an expense is divided among its participants.
type SplitType string

const (
	// SplitEqual divides the amount equally among participants.
	SplitEqual SplitType = "equal"
	// SplitExact assigns each participant an explicit amount.
	SplitExact SplitType = "exact"
)

// Expense represents an amount paid by one member on behalf of others.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// EventID is the event this expense belongs to.
	EventID string

	// Description is what the money was spent on (e.g., "Dinner").
	Description string

	// Amount is the total paid.
	Amount decimal.Decimal

	// PaidBy is the username of the member who paid.
	PaidBy string

	// Participants are the usernames sharing this expense.
	Participants []string

	// SplitType is equal unless ExactAmounts is populated.
	SplitType SplitType

	// ExactAmounts maps participant to share for SplitExact expenses.
	ExactAmounts map[string]decimal.Decimal

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}
