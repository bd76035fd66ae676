package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/rpc"
)

// Services groups the handlers mounted by Mount.
type Services struct {
	Auth        *AuthService
	Events      *EventService
	Settlements *SettlementService
}

// Mount registers every procedure on mux.
//
// Register and Login are public. Reads need a session. Anything that changes
// state also needs a CSRF token in the X-CSRFToken header.
func Mount(mux *http.ServeMux, svc Services, jwtManager *auth.JWTManager, logger *slog.Logger) {
	public := []connect.Interceptor{
		middleware.MetricsInterceptor(),
		middleware.LoggingInterceptor(logger),
	}
	session := []connect.Interceptor{
		middleware.MetricsInterceptor(),
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(logger),
	}
	mutating := append(session[:len(session):len(session)], middleware.RequireCSRF(jwtManager))

	handle(mux, rpc.AuthRegisterProcedure, svc.Auth.Register, public)
	handle(mux, rpc.AuthLoginProcedure, svc.Auth.Login, public)
	handle(mux, rpc.AuthIssueCSRFTokenProcedure, svc.Auth.IssueCSRFToken, session)
	handle(mux, rpc.AuthUpdateHandleProcedure, svc.Auth.UpdateHandle, mutating)

	handle(mux, rpc.EventCreateProcedure, svc.Events.CreateEvent, mutating)
	handle(mux, rpc.EventAddExpenseProcedure, svc.Events.AddExpense, mutating)
	handle(mux, rpc.EventListDuesProcedure, svc.Events.ListDues, session)

	handle(mux, rpc.SettlementRecordPaymentProcedure, svc.Settlements.RecordPayment, mutating)
}

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	interceptors []connect.Interceptor,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn,
		rpc.WithJSON(),
		connect.WithInterceptors(interceptors...),
	))
}
