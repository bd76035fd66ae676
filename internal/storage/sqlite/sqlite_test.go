package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "settleup-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asha := models.NewUser("Asha", "asha@example.com", "hash")
	if err := store.CreateUser(ctx, asha); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("duplicate username is rejected", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("Asha", "other@example.com", "hash"))
		if !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("GetUserByUsername", func(t *testing.T) {
		got, err := store.GetUserByUsername(ctx, "Asha")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if got.ID != asha.ID || got.Email != asha.Email {
			t.Errorf("unexpected user: %+v", got)
		}
		if got.Handle != "" {
			t.Errorf("expected empty handle, got %q", got.Handle)
		}
	})

	t.Run("unknown user returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetUserByUsername(ctx, "Nobody")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		_, err = store.GetUserByID(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateHandle", func(t *testing.T) {
		if err := store.UpdateHandle(ctx, asha.ID, "asha@okaxis"); err != nil {
			t.Fatalf("UpdateHandle failed: %v", err)
		}
		got, err := store.GetUserByID(ctx, asha.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Handle != "asha@okaxis" {
			t.Errorf("Handle = %q, want asha@okaxis", got.Handle)
		}
		if err := store.UpdateHandle(ctx, "missing", "x@y"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetUsersByUsernames skips unknown", func(t *testing.T) {
		users, err := store.GetUsersByUsernames(ctx, []string{"Asha", "Nobody"})
		if err != nil {
			t.Fatalf("GetUsersByUsernames failed: %v", err)
		}
		if len(users) != 1 || users["Asha"] == nil {
			t.Errorf("unexpected users: %v", users)
		}
	})
}

func TestEventsAndExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	event := &models.Event{Name: "Goa Trip", CreatedBy: "Asha", Members: []string{"Asha", "Bob", "Asha"}}
	if err := store.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if event.ID == "" || event.CreatedAt == 0 {
		t.Fatalf("expected generated ID and CreatedAt, got %+v", event)
	}

	got, err := store.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if len(got.Members) != 2 {
		t.Errorf("expected 2 members, got %v", got.Members)
	}

	if _, err := store.GetEvent(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	equal := &models.Expense{
		EventID:      event.ID,
		Description:  "Dinner",
		Amount:       decimal.RequireFromString("900.50"),
		PaidBy:       "Asha",
		Participants: []string{"Asha", "Bob"},
	}
	exact := &models.Expense{
		EventID:      event.ID,
		Description:  "Taxi",
		Amount:       decimal.RequireFromString("300"),
		PaidBy:       "Bob",
		Participants: []string{"Asha", "Bob"},
		ExactAmounts: map[string]decimal.Decimal{
			"Asha": decimal.RequireFromString("200"),
			"Bob":  decimal.RequireFromString("100"),
		},
		CreatedAt: equal.CreatedAt + 1,
	}
	for _, e := range []*models.Expense{equal, exact} {
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}
	if equal.SplitType != models.SplitEqual || exact.SplitType != models.SplitExact {
		t.Errorf("unexpected split types: %s, %s", equal.SplitType, exact.SplitType)
	}

	expenses, err := store.ListExpensesByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListExpensesByEvent failed: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(expenses))
	}
	byDesc := map[string]*models.Expense{}
	for _, e := range expenses {
		byDesc[e.Description] = e
	}
	if !byDesc["Dinner"].Amount.Equal(decimal.RequireFromString("900.5")) {
		t.Errorf("Dinner amount = %s", byDesc["Dinner"].Amount)
	}
	if len(byDesc["Dinner"].Participants) != 2 || byDesc["Dinner"].ExactAmounts != nil {
		t.Errorf("unexpected Dinner shares: %+v", byDesc["Dinner"])
	}
	if !byDesc["Taxi"].ExactAmounts["Asha"].Equal(decimal.RequireFromString("200")) {
		t.Errorf("unexpected Taxi shares: %+v", byDesc["Taxi"].ExactAmounts)
	}
}

func TestPayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payments := []*models.Payment{
		{EventID: "ev1", Payer: "Bob", Payee: "Asha", Amount: decimal.RequireFromString("500"), Method: models.MethodCash, CreatedAt: 100},
		{EventID: "ev1", Payer: "Chen", Payee: "Asha", Amount: decimal.RequireFromString("120.25"), Method: models.MethodUPI, Handle: "asha@okaxis", TxnRef: "TXN1", CreatedAt: 200},
		{EventID: "ev2", Payer: "Bob", Payee: "Chen", Amount: decimal.RequireFromString("10"), Method: models.MethodCash, CreatedAt: 300},
	}
	for _, p := range payments {
		if err := store.CreatePayment(ctx, p); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}
		if p.ID == "" || p.Status != models.PaymentStatusRecorded {
			t.Errorf("expected generated ID and status, got %+v", p)
		}
	}

	tests := []struct {
		name   string
		filter storage.PaymentFilter
		want   int
	}{
		{"all", storage.PaymentFilter{}, 3},
		{"by event", storage.PaymentFilter{EventID: "ev1"}, 2},
		{"by payer", storage.PaymentFilter{Payer: "Bob"}, 2},
		{"by payee and method", storage.PaymentFilter{Payee: "Asha", Method: models.MethodUPI}, 1},
		{"no match", storage.PaymentFilter{EventID: "ev3"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListPayments(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListPayments failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d payments, want %d", len(got), tt.want)
			}
		})
	}

	t.Run("newest first with optional fields", func(t *testing.T) {
		got, err := store.ListPayments(ctx, storage.PaymentFilter{EventID: "ev1"})
		if err != nil {
			t.Fatalf("ListPayments failed: %v", err)
		}
		if got[0].TxnRef != "TXN1" || got[0].Handle != "asha@okaxis" {
			t.Errorf("unexpected first payment: %+v", got[0])
		}
		if !got[0].Amount.Equal(decimal.RequireFromString("120.25")) {
			t.Errorf("Amount = %s, want 120.25", got[0].Amount)
		}
		if got[1].TxnRef != "" {
			t.Errorf("expected empty TxnRef, got %q", got[1].TxnRef)
		}
	})
}
