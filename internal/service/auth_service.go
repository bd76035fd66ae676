package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/rpc"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/upi"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		logger:        logger,
	}
}

// Register creates a new user account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[rpc.RegisterRequest]) (*connect.Response[rpc.SessionResponse], error) {
	s.logger.Info("Register request", "username", req.Msg.Username)

	if err := validate.Struct(req.Msg); err != nil {
		return nil, invalidArgument(err)
	}

	user, err := s.authenticator.Register(ctx, req.Msg.Username, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Error("Registration failed", "username", req.Msg.Username, "error", err)
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp, err := s.session(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User registered successfully", "user_id", user.ID, "username", user.Username)
	return resp, nil
}

// Login authenticates a user and returns a session token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[rpc.LoginRequest]) (*connect.Response[rpc.SessionResponse], error) {
	s.logger.Info("Login request", "username", req.Msg.Username)

	if err := validate.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "username", req.Msg.Username, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	resp, err := s.session(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in successfully", "user_id", user.ID, "username", user.Username)
	return resp, nil
}

// IssueCSRFToken returns a fresh anti-forgery token for the session user.
func (s *AuthService) IssueCSRFToken(ctx context.Context, _ *connect.Request[rpc.IssueCSRFTokenRequest]) (*connect.Response[rpc.IssueCSRFTokenResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	token, err := s.jwtManager.GenerateCSRF(userID)
	if err != nil {
		s.logger.Error("Failed to generate csrf token", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&rpc.IssueCSRFTokenResponse{Token: token}), nil
}

// UpdateHandle stores the caller's UPI handle. Bad input is answered with
// success=false and a message rather than an error.
func (s *AuthService) UpdateHandle(ctx context.Context, req *connect.Request[rpc.UpdateHandleRequest]) (*connect.Response[rpc.UpdateHandleResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	handle := strings.TrimSpace(req.Msg.Handle)
	if handle == "" {
		return connect.NewResponse(&rpc.UpdateHandleResponse{Message: "UPI cannot be empty."}), nil
	}
	if !upi.IsValidHandle(handle) {
		return connect.NewResponse(&rpc.UpdateHandleResponse{Message: "Invalid UPI format."}), nil
	}

	if err := s.store.UpdateHandle(ctx, userID, handle); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		s.logger.Error("Failed to update handle", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("UPI handle updated", "user_id", userID)
	return connect.NewResponse(&rpc.UpdateHandleResponse{
		Success: true,
		Handle:  handle,
		Message: "UPI saved successfully!",
	}), nil
}

func (s *AuthService) session(user *models.User) (*connect.Response[rpc.SessionResponse], error) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&rpc.SessionResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
	}), nil
}
