// Package dialog implements the confirmation dialogs that turn a click on a
// pay control into a recorded settlement.
//
// Each dialog is a small state machine, Closed -> Open -> Closed, with a
// Submitting sub-state while a settlement call is outstanding. The active
// PaymentTrigger is handed to Open and kept as dialog state, so confirming
// always acts on the trigger that opened the dialog most recently.
package dialog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mmynk/settleup/internal/models"
)

var (
	ErrNotOpen               = errors.New("dialog is not open")
	ErrInFlight              = errors.New("settlement already in progress")
	ErrInvalidAmount         = errors.New("amount must be a positive number")
	ErrInvalidReceiverHandle = errors.New("invalid receiver upi handle")
	ErrInvalidPayerHandle    = errors.New("invalid payer upi handle")
	ErrNavigation            = errors.New("failed to open payment app")
)

// Notifier shows a message to the user.
type Notifier interface {
	Notify(message string)
}

// Navigator hands a deep link to whatever handles it outside this process.
// It returns once the hand-off is made; it never reports the transfer outcome.
type Navigator interface {
	Navigate(ctx context.Context, link string) error
}

// Recorder persists settlements. Record never fails; failures come back as
// unsuccessful results.
type Recorder interface {
	Configured() bool
	Record(ctx context.Context, req models.SettlementRequest) models.SettlementResult
}

// Updater applies the "paid" badge to the block of a trigger.
type Updater interface {
	MarkSettled(triggerID string, method models.Method, amount string) bool
}

// State of a dialog.
type State int

const (
	Closed State = iota
	Open
	Submitting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Option configures a dialog.
type Option func(*config)

type config struct {
	eventID     string
	note        string
	callbackURL string
	newTxnRef   func() string
	logger      *slog.Logger
}

func newConfig(base config, opts []Option) config {
	for _, opt := range opts {
		opt(&base)
	}
	if base.logger == nil {
		base.logger = slog.Default()
	}
	return base
}

// WithEventID attaches the event to every SettlementRequest.
func WithEventID(id string) Option {
	return func(c *config) { c.eventID = id }
}

// WithNote sets the UPI transaction note.
func WithNote(note string) Option {
	return func(c *config) { c.note = note }
}

// WithCallbackURL makes UPI links carry a callback page with the
// transaction id, amount and receiver.
func WithCallbackURL(u string) Option {
	return func(c *config) { c.callbackURL = u }
}

// WithTxnRefFunc replaces the UPI transaction reference generator.
func WithTxnRefFunc(fn func() string) Option {
	return func(c *config) { c.newTxnRef = fn }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// machine holds the state shared by both dialogs. Callers hold mu.
type machine struct {
	mu      sync.Mutex
	state   State
	trigger *models.PaymentTrigger
}

func (m *machine) open(t models.PaymentTrigger) error {
	if m.state == Submitting {
		return ErrInFlight
	}
	m.state = Open
	m.trigger = &t
	return nil
}

func (m *machine) cancel() error {
	switch m.state {
	case Submitting:
		return ErrInFlight
	case Closed:
		return nil
	}
	m.close()
	return nil
}

// begin moves Open -> Submitting and returns the pending trigger.
func (m *machine) begin() (models.PaymentTrigger, error) {
	switch m.state {
	case Closed:
		return models.PaymentTrigger{}, ErrNotOpen
	case Submitting:
		return models.PaymentTrigger{}, ErrInFlight
	}
	m.state = Submitting
	return *m.trigger, nil
}

func (m *machine) close() {
	m.state = Closed
	m.trigger = nil
}

func (m *machine) finish() {
	m.mu.Lock()
	m.close()
	m.mu.Unlock()
}

// State returns the current dialog state.
func (m *machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Trigger returns the pending trigger while the dialog is open.
func (m *machine) Trigger() (models.PaymentTrigger, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trigger == nil {
		return models.PaymentTrigger{}, false
	}
	return *m.trigger, true
}

// errorMessage prefers the server's error text over fallback.
func errorMessage(res models.SettlementResult, fallback string) string {
	if res.Error != "" {
		return res.Error
	}
	return fallback
}
