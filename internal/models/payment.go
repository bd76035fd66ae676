package models

import "github.com/shopspring/decimal"

// PaymentStatusRecorded marks a payment acknowledged by the backend. UPI
// transfers are never confirmed by the payment app, so this is the only status.
const PaymentStatusRecorded = "Recorded"

// Payment represents a settlement recorded between two event members.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// EventID is the event whose dues this payment settles. May be empty.
	EventID string

	// Payer is the username of the member who paid (debtor settling up).
	Payer string

	// Payee is the username of the member who received payment.
	Payee string

	// Amount is the payment amount.
	Amount decimal.Decimal

	// Method is how the money moved.
	Method Method

	// Handle is the receiver UPI handle for UPI payments.
	Handle string

	// TxnRef is the client generated UPI transaction reference.
	TxnRef string

	// Status is the backend status of the payment.
	Status string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}
