package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// CreateExpense persists an expense and its participant shares.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.SplitType == "" {
		expense.SplitType = models.SplitEqual
		if len(expense.ExactAmounts) > 0 {
			expense.SplitType = models.SplitExact
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := s.builder.Insert("expenses").
		Columns("id", "event_id", "description", "amount", "paid_by", "split_type", "created_at").
		Values(expense.ID, expense.EventID, expense.Description, expense.Amount.String(),
			expense.PaidBy, string(expense.SplitType), expense.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert expense query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, name := range expense.Participants {
		var exact any
		if amt, ok := expense.ExactAmounts[name]; ok {
			exact = amt.String()
		}
		query, args, err := s.builder.Insert("expense_shares").
			Columns("expense_id", "username", "exact_amount").
			Values(expense.ID, name, exact).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert share query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListExpensesByEvent retrieves all expenses of an event with their shares.
func (s *SQLiteStore) ListExpensesByEvent(ctx context.Context, eventID string) ([]*models.Expense, error) {
	query, args, err := s.builder.
		Select("id", "event_id", "description", "amount", "paid_by", "split_type", "created_at").
		From("expenses").
		Where(squirrel.Eq{"event_id": eventID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list expenses query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		var amount, splitType string
		if err := rows.Scan(&e.ID, &e.EventID, &e.Description, &amount, &e.PaidBy, &splitType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid amount for expense %s: %w", e.ID, err)
		}
		e.SplitType = models.SplitType(splitType)
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	ids := make([]string, 0, len(expenses))
	for _, e := range expenses {
		ids = append(ids, e.ID)
	}
	query, args, err = s.builder.
		Select("expense_id", "username", "exact_amount").
		From("expense_shares").
		Where(squirrel.Eq{"expense_id": ids}).
		OrderBy("username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list shares query: %w", err)
	}

	shareRows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var expenseID, name string
		var exact sql.NullString
		if err := shareRows.Scan(&expenseID, &name, &exact); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		e := byID[expenseID]
		e.Participants = append(e.Participants, name)
		if exact.Valid {
			amt, err := decimal.NewFromString(exact.String)
			if err != nil {
				return nil, fmt.Errorf("invalid exact amount for expense %s: %w", expenseID, err)
			}
			if e.ExactAmounts == nil {
				e.ExactAmounts = make(map[string]decimal.Decimal)
			}
			e.ExactAmounts[name] = amt
		}
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return expenses, nil
}
