package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/upi"
	"github.com/mmynk/settleup/pkg/metrics"
)

// SettlementService implements the settlement endpoint.
//
// Domain rejections are answered with success=false and a message. Connect
// errors are reserved for missing authentication and storage failures.
type SettlementService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewSettlementService creates a new SettlementService with the given storage.
func NewSettlementService(store storage.Store, logger *slog.Logger) *SettlementService {
	return &SettlementService{store: store, logger: logger}
}

// RecordPayment stores a payment from the caller to the payee.
func (s *SettlementService) RecordPayment(ctx context.Context, req *connect.Request[models.SettlementRequest]) (*connect.Response[models.SettlementResult], error) {
	payer := middleware.GetUsername(ctx)
	if payer == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	msg := req.Msg
	s.logger.Info("RecordPayment request", "payer", payer, "payee", msg.Payee, "method", msg.Method)

	if err := validate.Struct(msg); err != nil {
		return s.reject("invalid", rejectionMessage(err)), nil
	}
	if msg.Payee == payer {
		return s.reject("self", "You cannot pay yourself."), nil
	}

	if msg.EventID != "" {
		if _, err := s.store.GetEvent(ctx, msg.EventID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return s.reject("event", "Event not found."), nil
			}
			return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to get event: %w", err))
		}
	}

	if _, err := s.store.GetUserByUsername(ctx, msg.Payee); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return s.reject("payee", fmt.Sprintf("User '%s' not found.", msg.Payee)), nil
		}
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to get payee: %w", err))
	}

	amount, err := upi.ParseAmount(msg.Amount)
	if err != nil {
		return s.reject("invalid", "Invalid amount."), nil
	}

	payment := &models.Payment{
		EventID: msg.EventID,
		Payer:   payer,
		Payee:   msg.Payee,
		Amount:  amount,
		Method:  msg.Method,
		TxnRef:  msg.TxnRef,
	}
	if msg.Method == models.MethodUPI {
		payment.Handle = msg.Handle
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		s.logger.Error("Failed to save payment", "payee", msg.Payee, "error", err)
		return connect.NewResponse(&models.SettlementResult{Error: err.Error()}), nil
	}

	metrics.PaymentsRecorded.WithLabelValues(string(msg.Method)).Inc()
	s.logger.Info("Payment recorded",
		"payment_id", payment.ID,
		"payer", payer,
		"payee", msg.Payee,
		"method", msg.Method,
	)
	return connect.NewResponse(&models.SettlementResult{
		Success:   true,
		Message:   fmt.Sprintf("Payment of %s to %s recorded via %s.", upi.DisplayAmount(msg.Amount), msg.Payee, msg.Method),
		PaymentID: payment.ID,
	}), nil
}

func (s *SettlementService) reject(reason, message string) *connect.Response[models.SettlementResult] {
	metrics.PaymentsRejected.WithLabelValues(reason).Inc()
	s.logger.Warn("Payment rejected", "reason", reason, "error", message)
	return connect.NewResponse(&models.SettlementResult{Error: message})
}

// rejectionMessage maps the first validation failure to the message shown to
// the payer.
func rejectionMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Missing payment data."
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return "Missing payment data."
		}
	}
	switch fe := verrs[0]; fe.Tag() {
	case "oneof":
		return "Invalid payment method."
	case "amount":
		return "Invalid amount."
	case "vpa":
		return "Invalid UPI ID."
	default:
		return fmt.Sprintf("Invalid %s.", fe.Field())
	}
}
