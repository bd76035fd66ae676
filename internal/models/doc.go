// Package models defines the core domain models for settleup.
//
// # Client-side models
//
// The settlement workflow on the client works with:
//   - PaymentTrigger: one outstanding due shown on the board (payee, amount, handle)
//   - SettlementRequest: the wire payload sent to the settlement endpoint
//   - SettlementResult: the interpreted endpoint response
//   - SettlementBadge: the "paid" annotation attached to a board block
//
// # Server-side models
//
// The backend persists:
//   - User: an account with an optional UPI handle
//   - Event: a group of members sharing expenses
//   - Expense: an amount paid by one member and split among participants
//   - Payment: a recorded settlement between two members
//
// # Design Principles
//
// 1. **Names as identities**: members are referenced by username, matching
//    what the settlement endpoint receives as payee
// 2. **Decimal strings on the wire**: amounts travel as strings and are parsed
//    with shopspring/decimal where arithmetic is needed
// 3. **Avoid circular references**: use ID strings instead of pointers for relationships
package models
