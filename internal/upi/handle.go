// Package upi validates UPI payment handles and amounts and builds the
// upi://pay deep links handed to external payment apps.
package upi

import "regexp"

// handlePattern accepts "name@bank": 2-256 characters of letters, digits,
// dot, hyphen or underscore, then "@", then 2-64 letters.
var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z]{2,64}$`)

// IsValidHandle reports whether s is a syntactically valid UPI handle (VPA).
// The same rule applies to receiver handles from profiles and to handles a
// payer types in.
func IsValidHandle(s string) bool {
	return handlePattern.MatchString(s)
}
