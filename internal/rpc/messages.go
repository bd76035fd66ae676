package rpc

import "github.com/mmynk/settleup/internal/models"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse answers Register and Login.
type SessionResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type IssueCSRFTokenRequest struct{}

type IssueCSRFTokenResponse struct {
	Token string `json:"token"`
}

type UpdateHandleRequest struct {
	Handle string `json:"upi"`
}

type UpdateHandleResponse struct {
	Success bool   `json:"success"`
	Handle  string `json:"upi,omitempty"`
	Message string `json:"message,omitempty"`
}

type CreateEventRequest struct {
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members"`
}

type Event struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatedBy string   `json:"created_by"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

type CreateEventResponse struct {
	Event Event `json:"event"`
}

type AddExpenseRequest struct {
	EventID      string            `json:"event_id" validate:"required"`
	Description  string            `json:"description" validate:"required"`
	Amount       string            `json:"amount" validate:"required,amount"`
	PaidBy       string            `json:"paid_by" validate:"required"`
	Participants []string          `json:"participants" validate:"required,min=1"`
	ExactAmounts map[string]string `json:"exact_amounts,omitempty"`
}

type AddExpenseResponse struct {
	ExpenseID string `json:"expense_id"`
}

type ListDuesRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

// ListDuesResponse carries one trigger per payee the caller still owes.
type ListDuesResponse struct {
	Dues     []models.PaymentTrigger `json:"dues"`
	TotalDue string                  `json:"total_due"`
}
