package dialog

import (
	"context"
	"errors"
	"sync"

	"github.com/mmynk/settleup/internal/models"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *fakeNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type fakeNavigator struct {
	mu    sync.Mutex
	links []string
	err   error
}

func (n *fakeNavigator) Navigate(ctx context.Context, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.links = append(n.links, link)
	return nil
}

// fakeRecorder answers with result. When block is non-nil, Record waits on
// it after signalling started.
type fakeRecorder struct {
	mu         sync.Mutex
	configured bool
	result     models.SettlementResult
	requests   []models.SettlementRequest
	started    chan struct{}
	block      chan struct{}
}

func (r *fakeRecorder) Configured() bool { return r.configured }

func (r *fakeRecorder) Record(ctx context.Context, req models.SettlementRequest) models.SettlementResult {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()

	if r.block != nil {
		close(r.started)
		<-r.block
	}
	if !r.configured {
		return models.SettlementResult{Success: true, Message: "Payment recorded locally", Local: true}
	}
	return r.result
}

func (r *fakeRecorder) calls() []models.SettlementRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.SettlementRequest(nil), r.requests...)
}

type mark struct {
	id     string
	method models.Method
	amount string
}

type fakeUpdater struct {
	mu    sync.Mutex
	marks []mark
}

func (u *fakeUpdater) MarkSettled(id string, method models.Method, amount string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.marks = append(u.marks, mark{id, method, amount})
	return true
}

func (u *fakeUpdater) all() []mark {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]mark(nil), u.marks...)
}

var errNoHandler = errors.New("no handler for upi scheme")
