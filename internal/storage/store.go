// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique key is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// PaymentFilter narrows ListPayments. Empty fields match everything.
type PaymentFilter struct {
	EventID string
	Payer   string
	Payee   string
	Method  models.Method
}

// Store defines the persistence operations the services need.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. Usernames are unique.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername returns ErrNotFound when no user has that name.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID returns ErrNotFound when the ID is unknown.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByUsernames returns the users that exist, keyed by username.
	GetUsersByUsernames(ctx context.Context, usernames []string) (map[string]*models.User, error)

	// UpdateHandle sets the UPI handle of a user.
	UpdateHandle(ctx context.Context, userID, handle string) error

	// CreateEvent persists an event with its members. The ID is generated if empty.
	CreateEvent(ctx context.Context, event *models.Event) error

	// GetEvent retrieves an event with its members.
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)

	// CreateExpense persists an expense with its participants.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpensesByEvent retrieves all expenses of an event, oldest first.
	ListExpensesByEvent(ctx context.Context, eventID string) ([]*models.Expense, error)

	// CreatePayment persists a recorded settlement.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// ListPayments retrieves payments matching filter, newest first.
	ListPayments(ctx context.Context, filter PaymentFilter) ([]*models.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}
