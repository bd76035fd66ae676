package models

import "fmt"

// Method is the way a debt was settled.
type Method string

const (
	MethodCash Method = "Cash"
	MethodUPI  Method = "UPI"
)

// Valid reports whether m is a known payment method.
func (m Method) Valid() bool {
	return m == MethodCash || m == MethodUPI
}

// PaymentTrigger is one outstanding due shown on the board, with the data a
// pay control carries. It is immutable once rendered.
type PaymentTrigger struct {
	// ID is the stable key of the due, threaded through from the render layer.
	ID string `json:"id"`

	// ReceiverName is the payee's username.
	ReceiverName string `json:"receiver"`

	// Amount is the amount owed as a decimal string, without currency glyph.
	Amount string `json:"amount"`

	// ReceiverHandle is the payee's UPI handle. Empty means unknown.
	ReceiverHandle string `json:"upi,omitempty"`
}

// SettlementRequest is the payload sent to the settlement endpoint.
// The canonical encoding is {payee, amount, method}; the remaining fields are
// omitted when empty.
type SettlementRequest struct {
	Payee   string `json:"payee" validate:"required"`
	Amount  string `json:"amount" validate:"required,amount"`
	Method  Method `json:"method" validate:"required,oneof=Cash UPI"`
	EventID string `json:"event_id,omitempty"`
	Handle  string `json:"upi_id,omitempty" validate:"omitempty,vpa"`
	TxnRef  string `json:"txn_ref,omitempty"`
}

// SettlementResult is the interpreted response of the settlement endpoint.
type SettlementResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	PaymentID string `json:"payment_id,omitempty"`

	// Local is set when the result was synthesized because no endpoint is
	// configured. It never travels on the wire.
	Local bool `json:"-"`
}

// SettlementBadge is the "paid" annotation attached to a board block.
type SettlementBadge struct {
	Method Method
	Amount string
}

// Text renders the badge label, e.g. "Paid via Cash ₹500".
func (b SettlementBadge) Text() string {
	return fmt.Sprintf("Paid via %s ₹%s", b.Method, b.Amount)
}
