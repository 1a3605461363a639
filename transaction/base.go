package transaction

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/qmuntal/stateless"

	"github.com/ghettovoice/gosip/internal/types"
	"github.com/ghettovoice/gosip/log"
)

// State is one of the states of a client transaction state machine
// (spec §4.2, §4.3).
type State string

const (
	StateCalling    State = "calling"
	StateTrying     State = "trying"
	StateProceeding State = "proceeding"
	StateCompleted  State = "completed"
	StateTerminated State = "terminated"
)

// Type distinguishes which of the two client machines a transaction is
// running (spec §3, TransactionData.tag).
type Type string

const (
	TypeInviteClient    Type = "invite/client"
	TypeNonInviteClient Type = "non-invite/client"
)

// trigger is a qmuntal/stateless event. Triggers are internal to the
// package; callers interact with a transaction through [Transaction].
type trigger string

const (
	trigResponse     trigger = "response"
	trigTransportErr trigger = "transport_error"
	trigStop         trigger = "stop"
	trigTimerA       trigger = "timer_a"
	trigTimerB       trigger = "timer_b"
	trigTimerD       trigger = "timer_d"
	trigTimerE       trigger = "timer_e"
	trigTimerF       trigger = "timer_f"
	trigTimerK       trigger = "timer_k"
)

var txCtxKey types.ContextKey = "transaction"

// ContextWithTransaction returns a new context carrying tx.
func ContextWithTransaction(ctx context.Context, tx Transaction) context.Context {
	return context.WithValue(ctx, txCtxKey, tx)
}

// TransactionFromContext retrieves a transaction previously attached with
// [ContextWithTransaction].
func TransactionFromContext(ctx context.Context) (Transaction, bool) {
	tx, ok := ctx.Value(txCtxKey).(Transaction)
	return tx, ok
}

// Transaction is the handle a [Dispatcher] returns for a started client
// transaction (spec §4.1, §4.6).
type Transaction interface {
	Key() ClientTransactionKey
	Type() Type
	State() State
	Request() *Request
	LastResponse() *Response

	// RecvResponse delivers an inbound response to the transaction
	// (spec §4.6, on_response).
	RecvResponse(ctx context.Context, res *Response)
	// RecvError delivers a transport failure to the transaction
	// (spec §4.6, on_error).
	RecvError(ctx context.Context, reason error)
	// Terminate requests graceful shutdown (spec §4.6, stop).
	Terminate(ctx context.Context)

	// OnResponse registers a callback invoked for every response the
	// transaction forwards to the Core. The returned func removes it.
	OnResponse(fn func(ctx context.Context, res *Response)) (remove func())
	// OnStateChanged registers a callback invoked on every state
	// transition. The returned func removes it.
	OnStateChanged(fn func(ctx context.Context, from, to State)) (remove func())
}

// ClientTransport is the transport-layer collaborator (spec §6.1).
type ClientTransport interface {
	// SendRequest hands req to the transport. An error returned for the
	// initial request or for the first ACK terminates the transaction with
	// ErrTransportFailed; errors returned for retransmissions of the request
	// or of the ACK are ignored.
	SendRequest(ctx context.Context, req *Request) error
	// Reliable reports whether the transport is stream-oriented
	// (TCP/TLS/SCTP ⇒ true) or datagram (UDP ⇒ false).
	Reliable() bool
}

// Core is the transaction-user (TU) collaborator (spec §6.2).
type Core interface {
	// OnResponse is invoked before the transaction's state changes, so the
	// Core observes provisional responses even for transactions that
	// immediately terminate.
	OnResponse(ctx context.Context, key ClientTransactionKey, res *Response)
	OnTransportError(ctx context.Context, key ClientTransactionKey, reason error)
	OnTimeout(ctx context.Context, key ClientTransactionKey)
	OnTerminated(ctx context.Context, key ClientTransactionKey, normal bool, reason error)
}

// ClientTransactionOptions configures a single client transaction
// (spec §6.4).
type ClientTransactionOptions struct {
	Key     ClientTransactionKey
	Timings TimingConfig
	Logger  *slog.Logger
}

type termKind int

const (
	termNormal termKind = iota
	termTimeout
	termTransportError
	termShutdown
)

type termInfo struct {
	kind   termKind
	reason error
}

// baseTransact holds the state and collaborators shared by
// [inviteClientTransact] and [nonInviteClientTransact]: the pure
// (state, event, data) -> (state', actions) core spec §9 describes is
// implemented as a qmuntal/stateless statechart bound to this struct, which
// serializes FireCtx calls internally and so satisfies the "at most one
// event in flight per transaction" rule (spec §5) without a hand-rolled
// channel actor.
type baseTransact struct {
	key       ClientTransactionKey
	typ       Type
	request   *Request
	transport ClientTransport
	core      Core
	timings   TimingConfig
	log       *slog.Logger

	fsm *stateless.StateMachine

	curState atomic.Value // State

	lastResponse atomic.Pointer[Response]
	ack          atomic.Pointer[Request]
	pendingTerm  atomic.Pointer[termInfo]

	onResponse     types.CallbackManager[func(context.Context, *Response)]
	onStateChanged types.CallbackManager[func(context.Context, State, State)]

	// cancelTimers stops every timer the concrete FSM owns. Set once by the
	// concrete constructor; invoked on entering Terminated.
	cancelTimers func()

	done atomic.Bool
}

func newBaseTransact(typ Type, initial State, req *Request, transport ClientTransport, core Core, opts ClientTransactionOptions) *baseTransact {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	t := &baseTransact{
		key:       opts.Key,
		typ:       typ,
		request:   req,
		transport: transport,
		core:      core,
		timings:   opts.Timings.normalize(),
		log: logger.With(
			slog.String("transaction_type", string(typ)),
			slog.Any("transaction_key", opts.Key),
		),
	}
	t.curState.Store(initial)
	return t
}

func (t *baseTransact) Key() ClientTransactionKey { return t.key }

func (t *baseTransact) Type() Type { return t.typ }

func (t *baseTransact) State() State {
	s, _ := t.curState.Load().(State)
	return s
}

func (t *baseTransact) Request() *Request { return t.request }

func (t *baseTransact) LastResponse() *Response { return t.lastResponse.Load() }

func (t *baseTransact) OnResponse(fn func(ctx context.Context, res *Response)) (remove func()) {
	return t.onResponse.Add(fn)
}

func (t *baseTransact) OnStateChanged(fn func(ctx context.Context, from, to State)) (remove func()) {
	return t.onStateChanged.Add(fn)
}

func (t *baseTransact) RecvResponse(ctx context.Context, res *Response) {
	if t.done.Load() {
		t.log.DebugContext(ctx, "dropping response received after termination")
		return
	}
	if err := t.fsm.FireCtx(ctx, trigResponse, res); err != nil {
		t.log.DebugContext(ctx, "response ignored by current state", slog.Any("error", err))
	}
}

func (t *baseTransact) RecvError(ctx context.Context, reason error) {
	if t.done.Load() {
		return
	}
	t.pendingTerm.Store(&termInfo{kind: termTransportError, reason: reason})
	if err := t.fsm.FireCtx(ctx, trigTransportErr); err != nil {
		t.log.DebugContext(ctx, "transport error ignored by current state", slog.Any("error", err))
	}
}

func (t *baseTransact) Terminate(ctx context.Context) {
	if t.done.Load() {
		return
	}
	t.pendingTerm.Store(&termInfo{kind: termShutdown, reason: ErrShutdown})
	if err := t.fsm.FireCtx(ctx, trigStop); err != nil {
		t.log.DebugContext(ctx, "stop ignored by current state", slog.Any("error", err))
	}
}

func (t *baseTransact) notifyResponse(ctx context.Context, res *Response) {
	for fn := range t.onResponse.All() {
		fn(ctx, res)
	}
	t.core.OnResponse(ctx, t.key, res)
}

func (t *baseTransact) notifyStateChanged(ctx context.Context, from, to State) {
	if from == to {
		return
	}
	t.curState.Store(to)
	for fn := range t.onStateChanged.All() {
		fn(ctx, from, to)
	}
	t.log.DebugContext(ctx, "state changed", slog.String("from", string(from)), slog.String("to", string(to)))
}

// enterTerminated is the shared Terminated-entry action: cancel every
// timer, notify the Core of the specific failure kind (if any), then notify
// termination. Using one generic entry handler driven by pendingTerm (set
// by whichever code path decided to terminate) instead of per-trigger
// OnEntryFrom hooks keeps the "what happened" decision in the pure
// transition code and the "what it means for the Core" logic in one place.
func (t *baseTransact) enterTerminated(ctx context.Context, _ ...any) error {
	from := t.State()

	if t.cancelTimers != nil {
		t.cancelTimers()
	}

	info := t.pendingTerm.Load()
	if info == nil {
		info = &termInfo{kind: termNormal}
	}

	switch info.kind {
	case termTimeout:
		t.core.OnTimeout(ctx, t.key)
	case termTransportError:
		t.core.OnTransportError(ctx, t.key, info.reason)
	}

	t.done.Store(true)
	t.core.OnTerminated(ctx, t.key, info.kind == termNormal, info.reason)
	t.notifyStateChanged(ctx, from, StateTerminated)
	return nil
}
