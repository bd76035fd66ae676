package upi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

const (
	// Currency is the only currency UPI links carry.
	Currency = "INR"

	// DefaultNote is the transaction note used when none is given.
	DefaultNote = "Event payment"
)

// PayLink describes a payment intent for an external UPI app.
// Callers must validate Handle with IsValidHandle and Amount with
// IsUsableAmount before building the link.
type PayLink struct {
	Handle string // payee address (pa)
	Name   string // payee name (pn)
	Amount string // raw numeric amount (am), no currency glyph
	Note   string // transaction note (tn)

	// Ref is the optional transaction reference (tr).
	Ref string
	// CallbackURL is an optional page the app may return to (url).
	CallbackURL string
}

// Build returns the upi://pay URI. Parameters keep the fixed order
// pa, pn, am, cu, tn, tr, url and every value is percent-encoded on its own.
func (l PayLink) Build() string {
	var b strings.Builder
	b.WriteString("upi://pay?")
	b.WriteString("pa=" + encodeComponent(l.Handle))
	b.WriteString("&pn=" + encodeComponent(l.Name))
	b.WriteString("&am=" + encodeComponent(StripAmount(l.Amount)))
	b.WriteString("&cu=" + Currency)

	note := l.Note
	if note == "" {
		note = DefaultNote
	}
	b.WriteString("&tn=" + encodeComponent(note))

	if l.Ref != "" {
		b.WriteString("&tr=" + encodeComponent(l.Ref))
	}
	if l.CallbackURL != "" {
		b.WriteString("&url=" + encodeComponent(l.CallbackURL))
	}
	return b.String()
}

// BuildPayLink is shorthand for PayLink{...}.Build() without reference or callback.
func BuildPayLink(handle, name, amount, note string) string {
	return PayLink{Handle: handle, Name: name, Amount: amount, Note: note}.Build()
}

// encodeComponent percent-encodes s the way a URI component is encoded:
// spaces become %20, not "+".
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// NewTxnRef returns a transaction reference of the form TXN<12 hex digits>.
func NewTxnRef() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "TXN" + strings.ToUpper(id[:12])
}

// Callback carries the parameters a success page needs to look up a
// transfer the payment app may have completed.
type Callback struct {
	TxnID    string `url:"txn_id"`
	Receiver string `url:"receiver"`
	Amount   string `url:"amount"`
}

// CallbackURL appends the callback parameters to base.
func CallbackURL(base string, cb Callback) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid callback url: %w", err)
	}
	v, err := query.Values(cb)
	if err != nil {
		return "", fmt.Errorf("failed to encode callback: %w", err)
	}
	q := u.Query()
	for k, vals := range v {
		for _, val := range vals {
			q.Add(k, val)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
