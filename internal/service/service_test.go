package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/rpc"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

type testServer struct {
	url   string
	store *sqlite.SQLiteStore
}

// setupTestServer mounts all services on an httptest server backed by a temp database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "settleup-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, time.Hour)

	mux := http.NewServeMux()
	Mount(mux, Services{
		Auth:        NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger),
		Events:      NewEventService(store, logger),
		Settlements: NewSettlementService(store, logger),
	}, jwtManager, logger)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &testServer{url: server.URL, store: store}
}

// call invokes procedure with optional bearer and CSRF tokens.
func call[Req, Res any](ts *testServer, procedure string, msg *Req, token, csrf string) (*Res, error) {
	client := connect.NewClient[Req, Res](http.DefaultClient, ts.url+procedure, rpc.WithJSON())
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header().Set(rpc.CSRFHeader, csrf)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func register(t *testing.T, ts *testServer, username string) string {
	t.Helper()
	resp, err := call[rpc.RegisterRequest, rpc.SessionResponse](ts, rpc.AuthRegisterProcedure, &rpc.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}, "", "")
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", username, err)
	}
	return resp.Token
}

func csrfFor(t *testing.T, ts *testServer, token string) string {
	t.Helper()
	resp, err := call[rpc.IssueCSRFTokenRequest, rpc.IssueCSRFTokenResponse](ts, rpc.AuthIssueCSRFTokenProcedure, &rpc.IssueCSRFTokenRequest{}, token, "")
	if err != nil {
		t.Fatalf("IssueCSRFToken failed: %v", err)
	}
	return resp.Token
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}
