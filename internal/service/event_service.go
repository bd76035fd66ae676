package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/rpc"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/upi"
)

// EventService implements the EventService RPC interface.
type EventService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewEventService creates a new EventService with the given storage.
func NewEventService(store storage.Store, logger *slog.Logger) *EventService {
	return &EventService{store: store, logger: logger}
}

// CreateEvent creates an event. The caller is always a member.
func (s *EventService) CreateEvent(ctx context.Context, req *connect.Request[rpc.CreateEventRequest]) (*connect.Response[rpc.CreateEventResponse], error) {
	username := middleware.GetUsername(ctx)
	if username == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	if err := validate.Struct(req.Msg); err != nil {
		return nil, invalidArgument(err)
	}

	members := []string{username}
	seen := map[string]bool{username: true}
	for _, m := range req.Msg.Members {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		members = append(members, m)
	}

	event := &models.Event{Name: req.Msg.Name, CreatedBy: username, Members: members}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		s.logger.Error("Failed to create event", "error", err)
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to create event: %w", err))
	}

	s.logger.Info("Event created", "event_id", event.ID, "members", len(members))
	return connect.NewResponse(&rpc.CreateEventResponse{Event: eventToRPC(event)}), nil
}

// AddExpense records an expense paid by one member and shared by others.
func (s *EventService) AddExpense(ctx context.Context, req *connect.Request[rpc.AddExpenseRequest]) (*connect.Response[rpc.AddExpenseResponse], error) {
	msg := req.Msg
	if err := validate.Struct(msg); err != nil {
		return nil, invalidArgument(err)
	}

	event, err := s.memberEvent(ctx, msg.EventID)
	if err != nil {
		return nil, err
	}
	if !event.HasMember(msg.PaidBy) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s is not a member of this event", msg.PaidBy))
	}
	for _, p := range msg.Participants {
		if !event.HasMember(p) {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s is not a member of this event", p))
		}
	}

	amount, err := upi.ParseAmount(msg.Amount)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid amount: %w", err))
	}
	var exact map[string]decimal.Decimal
	if len(msg.ExactAmounts) > 0 {
		exact = make(map[string]decimal.Decimal, len(msg.ExactAmounts))
		for name, raw := range msg.ExactAmounts {
			d, err := upi.ParseAmount(raw)
			if err != nil {
				return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid amount for %s: %w", name, err))
			}
			exact[name] = d
		}
	}

	expense := &models.Expense{
		EventID:      event.ID,
		Description:  msg.Description,
		Amount:       amount,
		PaidBy:       msg.PaidBy,
		Participants: msg.Participants,
		ExactAmounts: exact,
	}
	if _, err := calculator.CalculateShares(toCalculatorExpense(expense)); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("Failed to save expense", "event_id", event.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to save expense: %w", err))
	}

	s.logger.Info("Expense added", "event_id", event.ID, "expense_id", expense.ID, "split", expense.SplitType)
	return connect.NewResponse(&rpc.AddExpenseResponse{ExpenseID: expense.ID}), nil
}

// ListDues returns what the caller still owes in an event, one PaymentTrigger
// per payee. Recorded payments are already netted out.
func (s *EventService) ListDues(ctx context.Context, req *connect.Request[rpc.ListDuesRequest]) (*connect.Response[rpc.ListDuesResponse], error) {
	if err := validate.Struct(req.Msg); err != nil {
		return nil, invalidArgument(err)
	}
	username := middleware.GetUsername(ctx)

	event, err := s.memberEvent(ctx, req.Msg.EventID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByEvent(ctx, event.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to list expenses: %w", err))
	}
	payments, err := s.store.ListPayments(ctx, storage.PaymentFilter{EventID: event.ID})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to list payments: %w", err))
	}

	calcExpenses := make([]calculator.Expense, 0, len(expenses))
	for _, e := range expenses {
		calcExpenses = append(calcExpenses, toCalculatorExpense(e))
	}
	transfers := make([]calculator.Transfer, 0, len(payments))
	for _, p := range payments {
		transfers = append(transfers, calculator.Transfer{From: p.Payer, To: p.Payee, Amount: p.Amount})
	}

	dues, err := calculator.DuesFrom(username, calcExpenses, transfers)
	if err != nil {
		s.logger.Error("Failed to calculate dues", "event_id", event.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to calculate dues: %w", err))
	}

	payees := make([]string, 0, len(dues))
	for _, d := range dues {
		payees = append(payees, d.To)
	}
	users, err := s.store.GetUsersByUsernames(ctx, payees)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to load payees: %w", err))
	}

	resp := &rpc.ListDuesResponse{Dues: make([]models.PaymentTrigger, 0, len(dues))}
	total := decimal.Zero
	for _, d := range dues {
		trigger := models.PaymentTrigger{
			ID:           DueID(event.ID, d.From, d.To),
			ReceiverName: d.To,
			Amount:       d.Amount.StringFixed(2),
		}
		if u, ok := users[d.To]; ok {
			trigger.ReceiverHandle = u.Handle
		}
		resp.Dues = append(resp.Dues, trigger)
		total = total.Add(d.Amount)
	}
	resp.TotalDue = total.StringFixed(2)

	return connect.NewResponse(resp), nil
}

// DueID is the stable identifier of the due from payer to payee in an event.
func DueID(eventID, payer, payee string) string {
	return eventID + ":" + payer + ":" + payee
}

// memberEvent loads the event and checks that the caller belongs to it.
func (s *EventService) memberEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to get event: %w", err))
	}
	if !event.HasMember(middleware.GetUsername(ctx)) {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("not a member of this event"))
	}
	return event, nil
}

func toCalculatorExpense(e *models.Expense) calculator.Expense {
	return calculator.Expense{
		Amount:       e.Amount,
		PaidBy:       e.PaidBy,
		Participants: e.Participants,
		Exact:        e.ExactAmounts,
	}
}

func eventToRPC(e *models.Event) rpc.Event {
	return rpc.Event{
		ID:        e.ID,
		Name:      e.Name,
		CreatedBy: e.CreatedBy,
		Members:   e.Members,
		CreatedAt: e.CreatedAt,
	}
}
