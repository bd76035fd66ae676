package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/rpc"
)

func staticToken(tok string) TokenSource {
	return TokenFunc(func(context.Context) (string, error) { return tok, nil })
}

// setupEndpoint serves RecordPayment with fn and returns the endpoint URL.
func setupEndpoint(t *testing.T, fn func(ctx context.Context, req *connect.Request[models.SettlementRequest]) (*connect.Response[models.SettlementResult], error)) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(rpc.SettlementRecordPaymentProcedure, connect.NewUnaryHandler(
		rpc.SettlementRecordPaymentProcedure,
		fn,
		rpc.WithJSON(),
	))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server.URL + rpc.SettlementRecordPaymentProcedure
}

func TestRecord_Success(t *testing.T) {
	var gotToken string
	var gotReq models.SettlementRequest
	endpoint := setupEndpoint(t, func(ctx context.Context, req *connect.Request[models.SettlementRequest]) (*connect.Response[models.SettlementResult], error) {
		gotToken = req.Header().Get(rpc.CSRFHeader)
		gotReq = *req.Msg
		return connect.NewResponse(&models.SettlementResult{Success: true, Message: "ok"}), nil
	})

	r, err := NewRecorder(staticToken("tok-1"), WithEndpoint(endpoint))
	require.NoError(t, err)
	require.True(t, r.Configured())

	res := r.Record(context.Background(), models.SettlementRequest{Payee: "Asha", Amount: "500", Method: models.MethodCash})

	assert.True(t, res.Success)
	assert.False(t, res.Local)
	assert.Equal(t, "ok", res.Message)
	assert.Equal(t, "tok-1", gotToken)
	assert.Equal(t, models.SettlementRequest{Payee: "Asha", Amount: "500", Method: models.MethodCash}, gotReq)
}

func TestRecord_CanonicalJSONBody(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "csrf", r.Header.Get(rpc.CSRFHeader))
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"saved"}`))
	}))
	defer server.Close()

	r, err := NewRecorder(staticToken("csrf"), WithEndpoint(server.URL+"/event/7/settle/"))
	require.NoError(t, err)

	res := r.Record(context.Background(), models.SettlementRequest{Payee: "Asha", Amount: "500", Method: models.MethodCash})

	assert.True(t, res.Success)
	assert.Equal(t, map[string]any{"payee": "Asha", "amount": "500", "method": "Cash"}, body)
}

func TestRecord_ServerRejected(t *testing.T) {
	endpoint := setupEndpoint(t, func(ctx context.Context, req *connect.Request[models.SettlementRequest]) (*connect.Response[models.SettlementResult], error) {
		return connect.NewResponse(&models.SettlementResult{Success: false, Error: "Already settled"}), nil
	})

	r, err := NewRecorder(staticToken("tok"), WithEndpoint(endpoint))
	require.NoError(t, err)

	res := r.Record(context.Background(), models.SettlementRequest{Payee: "Asha", Amount: "500", Method: models.MethodCash})
	assert.False(t, res.Success)
	assert.Equal(t, "Already settled", res.Error)
}

func TestRecord_RejectedWithErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"conflict", http.StatusConflict},
		{"bad request", http.StatusBadRequest},
		{"forbidden", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"success":false,"error":"Already settled"}`))
			}))
			defer server.Close()

			r, err := NewRecorder(staticToken("tok"), WithEndpoint(server.URL+"/event/7/settle/"))
			require.NoError(t, err)

			res := r.Record(context.Background(), models.SettlementRequest{Payee: "Asha", Amount: "500", Method: models.MethodCash})
			assert.Equal(t, models.SettlementResult{Success: false, Error: "Already settled"}, res)
		})
	}
}

func TestRecord_TransportFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{not json`))
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "error status without result body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"Already settled"}`))
			},
		},
		{
			name: "unauthenticated",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"code":"unauthenticated","message":"csrf token required"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			r, err := NewRecorder(staticToken("tok"), WithEndpoint(server.URL+rpc.SettlementRecordPaymentProcedure))
			require.NoError(t, err)

			res := r.Record(context.Background(), models.SettlementRequest{Payee: "Asha", Amount: "500", Method: models.MethodCash})
			assert.Equal(t, models.SettlementResult{Success: false, Error: FailureMessage}, res)
		})
	}
}

func TestRecord_UnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL + rpc.SettlementRecordPaymentProcedure
	server.Close()

	r, err := NewRecorder(staticToken("tok"), WithEndpoint(endpoint))
	require.NoError(t, err)

	res := r.Record(context.Background(), models.SettlementRequest{Payee: "Asha", Amount: "500", Method: models.MethodUPI})
	assert.False(t, res.Success)
	assert.Equal(t, FailureMessage, res.Error)
}

func TestRecord_TokenFailure(t *testing.T) {
	var calls atomic.Int32
	endpoint := setupEndpoint(t, func(ctx context.Context, req *connect.Request[models.SettlementRequest]) (*connect.Response[models.SettlementResult], error) {
		calls.Add(1)
		return connect.NewResponse(&models.SettlementResult{Success: true}), nil
	})

	tokens := TokenFunc(func(context.Context) (string, error) { return "", ErrNoToken })
	r, err := NewRecorder(tokens, WithEndpoint(endpoint))
	require.NoError(t, err)

	res := r.Record(context.Background(), models.SettlementRequest{Payee: "Asha", Amount: "500", Method: models.MethodCash})
	assert.False(t, res.Success)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRecord_TokenReadPerSubmission(t *testing.T) {
	var issued atomic.Int32
	tokens := TokenFunc(func(context.Context) (string, error) {
		issued.Add(1)
		return "tok", nil
	})
	endpoint := setupEndpoint(t, func(ctx context.Context, req *connect.Request[models.SettlementRequest]) (*connect.Response[models.SettlementResult], error) {
		return connect.NewResponse(&models.SettlementResult{Success: true}), nil
	})

	r, err := NewRecorder(tokens, WithEndpoint(endpoint))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		r.Record(context.Background(), models.SettlementRequest{Payee: "Asha", Amount: "1", Method: models.MethodCash})
	}
	assert.Equal(t, int32(3), issued.Load())
}

func TestRecord_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	endpoint := setupEndpoint(t, func(ctx context.Context, req *connect.Request[models.SettlementRequest]) (*connect.Response[models.SettlementResult], error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, connect.NewError(connect.CodeDeadlineExceeded, errors.New("slow"))
	})

	r, err := NewRecorder(staticToken("tok"), WithEndpoint(endpoint), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	res := r.Record(context.Background(), models.SettlementRequest{Payee: "Asha", Amount: "500", Method: models.MethodCash})
	assert.False(t, res.Success)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRecord_NoEndpointRecordsLocally(t *testing.T) {
	var calls atomic.Int32
	tokens := TokenFunc(func(context.Context) (string, error) {
		calls.Add(1)
		return "tok", nil
	})

	r, err := NewRecorder(tokens)
	require.NoError(t, err)
	assert.False(t, r.Configured())
	assert.Empty(t, r.Endpoint())

	res := r.Record(context.Background(), models.SettlementRequest{Payee: "Asha", Amount: "500", Method: models.MethodCash})
	assert.True(t, res.Success)
	assert.True(t, res.Local)
	assert.Equal(t, LocalMessage, res.Message)
	assert.Equal(t, int32(0), calls.Load())
}

func TestNewRecorder_RejectsRelativeEndpoint(t *testing.T) {
	_, err := NewRecorder(staticToken("tok"), WithEndpoint("/event/1/settle/"))
	assert.Error(t, err)
}
