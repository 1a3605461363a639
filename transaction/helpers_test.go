package transaction_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ghettovoice/gosip/internal/types"
	"github.com/ghettovoice/gosip/transaction"
)

// stubTransport is a deterministic, in-memory ClientTransport that records
// every send so tests can assert on retransmission counts without a real
// socket (mirrors the teacher's stubClientTransport test helper).
type stubTransport struct {
	mu       sync.Mutex
	reliable bool
	sends    []*transaction.Request
	sendErr  error
	sentCh   chan *transaction.Request
}

func newStubTransport(reliable bool) *stubTransport {
	return &stubTransport{
		reliable: reliable,
		sentCh:   make(chan *transaction.Request, 64),
	}
}

func (s *stubTransport) SendRequest(_ context.Context, req *transaction.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sends = append(s.sends, req)
	select {
	case s.sentCh <- req:
	default:
	}
	return nil
}

func (s *stubTransport) Reliable() bool { return s.reliable }

func (s *stubTransport) sendCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sends)
}

// waitSend blocks until a request has been sent or timeout elapses.
func (s *stubTransport) waitSend(tb testing.TB, timeout time.Duration) *transaction.Request {
	tb.Helper()
	select {
	case req := <-s.sentCh:
		return req
	case <-time.After(timeout):
		tb.Fatalf("expected a send within %v, got none", timeout)
		return nil
	}
}

// ensureNoSend asserts no further request is sent within timeout.
func (s *stubTransport) ensureNoSend(tb testing.TB, timeout time.Duration) {
	tb.Helper()
	select {
	case req := <-s.sentCh:
		tb.Fatalf("unexpected send of %s within %v", req.Method, timeout)
	case <-time.After(timeout):
	}
}

// stubCore is a deterministic Core collecting every callback invocation.
type stubCore struct {
	mu          sync.Mutex
	responses   []*transaction.Response
	transportEr []error
	timeouts    int
	terminated  []termCall
	doneCh      chan struct{}
}

type termCall struct {
	normal bool
	reason error
}

func newStubCore() *stubCore {
	return &stubCore{doneCh: make(chan struct{}, 1)}
}

func (c *stubCore) OnResponse(_ context.Context, _ transaction.ClientTransactionKey, res *transaction.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, res)
}

func (c *stubCore) OnTransportError(_ context.Context, _ transaction.ClientTransactionKey, reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transportEr = append(c.transportEr, reason)
}

func (c *stubCore) OnTimeout(_ context.Context, _ transaction.ClientTransactionKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeouts++
}

func (c *stubCore) OnTerminated(_ context.Context, _ transaction.ClientTransactionKey, normal bool, reason error) {
	c.mu.Lock()
	c.terminated = append(c.terminated, termCall{normal, reason})
	c.mu.Unlock()
	select {
	case c.doneCh <- struct{}{}:
	default:
	}
}

func (c *stubCore) waitTerminated(tb testing.TB, timeout time.Duration) termCall {
	tb.Helper()
	select {
	case <-c.doneCh:
	case <-time.After(timeout):
		tb.Fatalf("expected termination within %v", timeout)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.terminated) == 0 {
		tb.Fatalf("expected a terminated call")
	}
	return c.terminated[len(c.terminated)-1]
}

func (c *stubCore) responseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.responses)
}

func newTestInvite(branch string) *transaction.Request {
	return &transaction.Request{
		Method:      types.RequestMethodInvite,
		RequestURI:  "sip:bob@biloxi.com",
		MaxForwards: 70,
		Via: []transaction.Via{{
			Transport: "UDP",
			Host:      "atlanta.com",
			Port:      5060,
			Params:    types.Values{}.Set("branch", branch),
		}},
		From:   transaction.NameAddr{DisplayName: "Alice", URI: "sip:alice@atlanta.com", Params: types.Values{}.Set("tag", "1928301774")},
		To:     transaction.NameAddr{DisplayName: "Bob", URI: "sip:bob@biloxi.com"},
		CallID: "a84b4c76e66710@pc33.atlanta.com",
		CSeq:   transaction.CSeq{Sequence: 314159, Method: types.RequestMethodInvite},
	}
}

func newTestNonInvite(branch string, method types.RequestMethod) *transaction.Request {
	req := newTestInvite(branch)
	req.Method = method
	req.CSeq = transaction.CSeq{Sequence: 314160, Method: method}
	return req
}

func newTestResponse(req *transaction.Request, status types.ResponseStatus) *transaction.Response {
	return &transaction.Response{
		StatusCode: status,
		Reason:     string(status.Reason()),
		Via:        req.Via,
		From:       req.From,
		To:         req.To.WithTag("as83kd9bFF"),
		CallID:     req.CallID,
		CSeq:       transaction.CSeq{Sequence: req.CSeq.Sequence, Method: req.Method},
	}
}

func fastTimings(t1 time.Duration) transaction.TimingConfig {
	return transaction.TimingConfig{
		T1:       t1,
		T2:       8 * t1,
		InviteT1: t1,
		TimerD:   4 * t1,
		TimerK:   4 * t1,
	}
}
