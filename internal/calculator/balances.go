package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// noise is the smallest amount treated as an outstanding debt.
var noise = decimal.NewFromFloat(0.01)

// MemberBalance represents the balance information for one event member.
type MemberBalance struct {
	MemberName string
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
	TotalPaid  decimal.Decimal // Paid for expenses plus settlements sent
	TotalOwed  decimal.Decimal // Expense shares plus settlements received
}

// Transfer is money that moves, or should move, from one member to another.
type Transfer struct {
	From   string // Person who owes / paid
	To     string // Person who is owed / received
	Amount decimal.Decimal
}

// CalculateBalances aggregates expenses and recorded payments into per-member
// balances, sorted by member name.
//
// - For each expense: payer contributed +amount, each participant owes their share
// - For each payment: the payer's balance improves, the receiver's decreases
func CalculateBalances(expenses []Expense, payments []Transfer) ([]MemberBalance, error) {
	balances := make(map[string]*MemberBalance)
	get := func(name string) *MemberBalance {
		b, ok := balances[name]
		if !ok {
			b = &MemberBalance{MemberName: name}
			balances[name] = b
		}
		return b
	}

	for _, e := range expenses {
		if e.PaidBy == "" {
			continue
		}
		shares, err := CalculateShares(e)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate shares: %w", err)
		}
		payer := get(e.PaidBy)
		payer.TotalPaid = payer.TotalPaid.Add(e.Amount)
		for name, share := range shares {
			m := get(name)
			m.TotalOwed = m.TotalOwed.Add(share)
		}
	}

	for _, p := range payments {
		from := get(p.From)
		from.TotalPaid = from.TotalPaid.Add(p.Amount)
		to := get(p.To)
		to.TotalOwed = to.TotalOwed.Add(p.Amount)
	}

	out := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetBalance = b.TotalPaid.Sub(b.TotalOwed)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberName < out[j].MemberName })
	return out, nil
}

// SettleUp matches debtors with creditors greedily, both taken in name
// order, and returns the transfers that clear all balances. Amounts are
// rounded to two decimals; anything under 0.01 is dropped.
func SettleUp(balances []MemberBalance) []Transfer {
	type entry struct {
		name   string
		amount decimal.Decimal
	}
	var debtors, creditors []entry
	for _, b := range balances {
		switch {
		case b.NetBalance.GreaterThanOrEqual(noise):
			creditors = append(creditors, entry{b.MemberName, b.NetBalance})
		case b.NetBalance.Neg().GreaterThanOrEqual(noise):
			debtors = append(debtors, entry{b.MemberName, b.NetBalance.Neg()})
		}
	}

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)

		if rounded := amount.Round(2); rounded.GreaterThanOrEqual(noise) {
			transfers = append(transfers, Transfer{
				From:   debtors[i].name,
				To:     creditors[j].name,
				Amount: rounded,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if debtors[i].amount.LessThan(noise) {
			i++
		}
		if creditors[j].amount.LessThan(noise) {
			j++
		}
	}
	return transfers
}

// DuesFrom returns the transfers debtor still has to make.
func DuesFrom(debtor string, expenses []Expense, payments []Transfer) ([]Transfer, error) {
	balances, err := CalculateBalances(expenses, payments)
	if err != nil {
		return nil, err
	}
	var dues []Transfer
	for _, t := range SettleUp(balances) {
		if t.From == debtor {
			dues = append(dues, t)
		}
	}
	return dues, nil
}
