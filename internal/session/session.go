// Package session is the client side of an authenticated settleup session.
// It carries the bearer token on every call and hands the Recorder a fresh
// CSRF token per submission.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/rpc"
	"github.com/mmynk/settleup/internal/settlement"
)

// BearerTransport adds an Authorization header to every request.
type BearerTransport struct {
	Token string
	Base  http.RoundTripper
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Token == "" {
		return base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.Token)
	return base.RoundTrip(r)
}

// Client talks to a settleup server on behalf of one user.
type Client struct {
	token      string
	httpClient *http.Client
	csrf       *connect.Client[rpc.IssueCSRFTokenRequest, rpc.IssueCSRFTokenResponse]
	dues       *connect.Client[rpc.ListDuesRequest, rpc.ListDuesResponse]
}

var _ settlement.TokenSource = (*Client)(nil)

// New creates a Client for the server at baseURL using the session token.
// base may be nil to use http.DefaultTransport.
func New(baseURL, token string, base http.RoundTripper) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := &http.Client{Transport: &BearerTransport{Token: token, Base: base}}
	return &Client{
		token:      token,
		httpClient: httpClient,
		csrf: connect.NewClient[rpc.IssueCSRFTokenRequest, rpc.IssueCSRFTokenResponse](
			httpClient, baseURL+rpc.AuthIssueCSRFTokenProcedure, rpc.WithJSON()),
		dues: connect.NewClient[rpc.ListDuesRequest, rpc.ListDuesResponse](
			httpClient, baseURL+rpc.EventListDuesProcedure, rpc.WithJSON()),
	}
}

// HTTPClient returns the authenticated HTTP client, for the Recorder.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Token asks the server for a new CSRF token. It is called once per
// settlement submission, so a token is never reused.
func (c *Client) Token(ctx context.Context) (string, error) {
	if c.token == "" {
		return "", settlement.ErrNoToken
	}
	resp, err := c.csrf.CallUnary(ctx, connect.NewRequest(&rpc.IssueCSRFTokenRequest{}))
	if err != nil {
		return "", fmt.Errorf("issue csrf token: %w", err)
	}
	if resp.Msg.Token == "" {
		return "", settlement.ErrNoToken
	}
	return resp.Msg.Token, nil
}

// ListDues fetches the caller's outstanding dues in eventID.
func (c *Client) ListDues(ctx context.Context, eventID string) (*rpc.ListDuesResponse, error) {
	resp, err := c.dues.CallUnary(ctx, connect.NewRequest(&rpc.ListDuesRequest{EventID: eventID}))
	if err != nil {
		return nil, fmt.Errorf("list dues: %w", err)
	}
	return resp.Msg, nil
}

// ErrLoginFailed is returned when the server rejects the credentials.
var ErrLoginFailed = errors.New("login failed")

// Login exchanges a username and password for a session token.
func Login(ctx context.Context, httpClient connect.HTTPClient, baseURL, username, password string) (string, error) {
	client := connect.NewClient[rpc.LoginRequest, rpc.SessionResponse](
		httpClient, strings.TrimRight(baseURL, "/")+rpc.AuthLoginProcedure, rpc.WithJSON())
	resp, err := client.CallUnary(ctx, connect.NewRequest(&rpc.LoginRequest{Username: username, Password: password}))
	if err != nil {
		if connect.CodeOf(err) == connect.CodeUnauthenticated {
			return "", fmt.Errorf("%w: %v", ErrLoginFailed, err)
		}
		return "", fmt.Errorf("login: %w", err)
	}
	return resp.Msg.Token, nil
}
