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
	"github.com/mmynk/settleup/internal/storage"
)

// CreatePayment persists a new payment to the database.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusRecorded
	}

	query, args, err := s.builder.Insert("payments").
		Columns("id", "event_id", "payer", "payee", "amount", "method", "upi_handle", "txn_ref", "status", "created_at").
		Values(
			payment.ID,
			nullable(payment.EventID),
			payment.Payer,
			payment.Payee,
			payment.Amount.String(),
			string(payment.Method),
			nullable(payment.Handle),
			nullable(payment.TxnRef),
			payment.Status,
			payment.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert payment query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// ListPayments retrieves payments matching filter, newest first.
func (s *SQLiteStore) ListPayments(ctx context.Context, filter storage.PaymentFilter) ([]*models.Payment, error) {
	q := s.builder.
		Select("id", "event_id", "payer", "payee", "amount", "method", "upi_handle", "txn_ref", "status", "created_at").
		From("payments")

	if filter.EventID != "" {
		q = q.Where(squirrel.Eq{"event_id": filter.EventID})
	}
	if filter.Payer != "" {
		q = q.Where(squirrel.Eq{"payer": filter.Payer})
	}
	if filter.Payee != "" {
		q = q.Where(squirrel.Eq{"payee": filter.Payee})
	}
	if filter.Method != "" {
		q = q.Where(squirrel.Eq{"method": string(filter.Method)})
	}

	query, args, err := q.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list payments query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		var eventID, handle, txnRef sql.NullString
		var amount, method string

		if err := rows.Scan(&p.ID, &eventID, &p.Payer, &p.Payee, &amount, &method,
			&handle, &txnRef, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid amount for payment %s: %w", p.ID, err)
		}
		p.Method = models.Method(method)
		p.EventID = eventID.String
		p.Handle = handle.String
		p.TxnRef = txnRef.String

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// nullable maps "" to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
