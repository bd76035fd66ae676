package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateShares(t *testing.T) {
	tests := []struct {
		name         string
		expense      Expense
		wantErr      bool
		validateFunc func(t *testing.T, shares map[string]decimal.Decimal)
	}{
		{
			name:    "equal split between two",
			expense: Expense{Amount: d("100"), PaidBy: "Alice", Participants: []string{"Alice", "Bob"}},
			validateFunc: func(t *testing.T, shares map[string]decimal.Decimal) {
				for _, p := range []string{"Alice", "Bob"} {
					if !shares[p].Equal(d("50")) {
						t.Errorf("%s share = %s, want 50", p, shares[p])
					}
				}
			},
		},
		{
			name: "exact split",
			expense: Expense{
				Amount:       d("90"),
				PaidBy:       "Alice",
				Participants: []string{"Alice", "Bob"},
				Exact:        map[string]decimal.Decimal{"Alice": d("30"), "Bob": d("60")},
			},
			validateFunc: func(t *testing.T, shares map[string]decimal.Decimal) {
				if !shares["Bob"].Equal(d("60")) {
					t.Errorf("Bob share = %s, want 60", shares["Bob"])
				}
			},
		},
		{
			name: "exact split must add up",
			expense: Expense{
				Amount:       d("90"),
				Participants: []string{"Alice", "Bob"},
				Exact:        map[string]decimal.Decimal{"Alice": d("30"), "Bob": d("50")},
			},
			wantErr: true,
		},
		{
			name: "exact split missing participant",
			expense: Expense{
				Amount:       d("30"),
				Participants: []string{"Alice", "Bob"},
				Exact:        map[string]decimal.Decimal{"Alice": d("30")},
			},
			wantErr: true,
		},
		{
			name:    "zero amount should error",
			expense: Expense{Amount: d("0"), Participants: []string{"Alice"}},
			wantErr: true,
		},
		{
			name:    "no participants should error",
			expense: Expense{Amount: d("10")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := CalculateShares(tt.expense)
			if (err != nil) != tt.wantErr {
				t.Errorf("CalculateShares() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

func TestCalculateBalances(t *testing.T) {
	expenses := []Expense{
		{Amount: d("900"), PaidBy: "Asha", Participants: []string{"Asha", "Bob", "Chen"}},
	}
	payments := []Transfer{{From: "Bob", To: "Asha", Amount: d("100")}}

	balances, err := CalculateBalances(expenses, payments)
	if err != nil {
		t.Fatalf("CalculateBalances failed: %v", err)
	}
	if len(balances) != 3 {
		t.Fatalf("expected 3 balances, got %d", len(balances))
	}

	want := map[string]string{"Asha": "500", "Bob": "-200", "Chen": "-300"}
	for _, b := range balances {
		if !b.NetBalance.Equal(d(want[b.MemberName])) {
			t.Errorf("%s net = %s, want %s", b.MemberName, b.NetBalance, want[b.MemberName])
		}
	}
	if balances[0].MemberName != "Asha" || balances[2].MemberName != "Chen" {
		t.Errorf("balances not sorted by name: %v", balances)
	}
}

func TestSettleUp(t *testing.T) {
	expenses := []Expense{
		{Amount: d("300"), PaidBy: "Asha", Participants: []string{"Asha", "Bob", "Chen"}},
		{Amount: d("60"), PaidBy: "Bob", Participants: []string{"Bob", "Chen"}},
	}
	balances, err := CalculateBalances(expenses, nil)
	if err != nil {
		t.Fatalf("CalculateBalances failed: %v", err)
	}

	// Asha +200, Bob -100+30 = -70, Chen -100-30 = -130
	transfers := SettleUp(balances)
	if len(transfers) != 2 {
		t.Fatalf("expected 2 transfers, got %d: %v", len(transfers), transfers)
	}
	if transfers[0].From != "Bob" || transfers[0].To != "Asha" || !transfers[0].Amount.Equal(d("70")) {
		t.Errorf("unexpected first transfer: %+v", transfers[0])
	}
	if transfers[1].From != "Chen" || transfers[1].To != "Asha" || !transfers[1].Amount.Equal(d("130")) {
		t.Errorf("unexpected second transfer: %+v", transfers[1])
	}
}

func TestSettleUp_RoundsThirds(t *testing.T) {
	expenses := []Expense{{Amount: d("100"), PaidBy: "Asha", Participants: []string{"Asha", "Bob", "Chen"}}}
	balances, _ := CalculateBalances(expenses, nil)

	for _, tr := range SettleUp(balances) {
		if !tr.Amount.Equal(d("33.33")) {
			t.Errorf("transfer %s->%s = %s, want 33.33", tr.From, tr.To, tr.Amount)
		}
	}
}

func TestDuesFrom(t *testing.T) {
	expenses := []Expense{{Amount: d("1000"), PaidBy: "Asha", Participants: []string{"Asha", "Bob"}}}

	dues, err := DuesFrom("Bob", expenses, nil)
	if err != nil {
		t.Fatalf("DuesFrom failed: %v", err)
	}
	if len(dues) != 1 || !dues[0].Amount.Equal(d("500")) {
		t.Fatalf("unexpected dues: %v", dues)
	}

	// Settled in full: nothing left.
	dues, err = DuesFrom("Bob", expenses, []Transfer{{From: "Bob", To: "Asha", Amount: d("500")}})
	if err != nil {
		t.Fatalf("DuesFrom failed: %v", err)
	}
	if len(dues) != 0 {
		t.Errorf("expected no dues after payment, got %v", dues)
	}

	// The creditor owes nothing.
	dues, _ = DuesFrom("Asha", expenses, nil)
	if len(dues) != 0 {
		t.Errorf("expected no dues for creditor, got %v", dues)
	}
}
