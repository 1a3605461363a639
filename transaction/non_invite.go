package transaction

import (
	"context"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/ghettovoice/gosip/internal/errorutil"
)

// nonInviteClientTransact implements RFC 3261 §17.1.2 (spec §4.3): trying,
// proceeding, completed, terminated.
type nonInviteClientTransact struct {
	*baseTransact

	timerE timerSlot // retransmit, unreliable only
	timerF timerSlot // absolute deadline, Trying+Proceeding
	timerK timerSlot // completed dwell, unreliable only

	eDelay time.Duration
}

func newNonInviteClientFSM(req *Request, transport ClientTransport, core Core, opts ClientTransactionOptions) *nonInviteClientTransact {
	tx := &nonInviteClientTransact{
		baseTransact: newBaseTransact(TypeNonInviteClient, StateTrying, req, transport, core, opts),
	}
	tx.cancelTimers = tx.cancelAllTimers

	fsm := stateless.NewStateMachine(stateless.State(StateTrying))
	tx.fsm = fsm

	fsm.Configure(stateless.State(StateTrying)).
		InternalTransition(stateless.Trigger(trigTimerE), tx.onTimerETrying).
		Permit(stateless.Trigger(trigTimerF), stateless.State(StateTerminated)).
		PermitDynamic(stateless.Trigger(trigResponse), tx.onResponseTrying).
		Permit(stateless.Trigger(trigTransportErr), stateless.State(StateTerminated)).
		Permit(stateless.Trigger(trigStop), stateless.State(StateTerminated))

	fsm.Configure(stateless.State(StateProceeding)).
		OnEntry(tx.enterProceeding).
		InternalTransition(stateless.Trigger(trigTimerE), tx.onTimerEProceeding).
		Permit(stateless.Trigger(trigTimerF), stateless.State(StateTerminated)).
		PermitDynamic(stateless.Trigger(trigResponse), tx.onResponseProceeding).
		Permit(stateless.Trigger(trigTransportErr), stateless.State(StateTerminated)).
		Permit(stateless.Trigger(trigStop), stateless.State(StateTerminated))

	fsm.Configure(stateless.State(StateCompleted)).
		OnEntry(tx.enterCompleted).
		InternalTransition(stateless.Trigger(trigResponse), tx.onResponseCompleted).
		Permit(stateless.Trigger(trigTimerK), stateless.State(StateTerminated)).
		Permit(stateless.Trigger(trigTransportErr), stateless.State(StateTerminated)).
		Permit(stateless.Trigger(trigStop), stateless.State(StateTerminated))

	fsm.Configure(stateless.State(StateTerminated)).
		OnEntry(tx.enterTerminated)

	return tx
}

// start sends the initial request, arms the absolute Timer F, and — on an
// unreliable transport — arms Timer E (spec §4.3, "trying entry").
func (tx *nonInviteClientTransact) start(ctx context.Context) {
	if err := tx.transport.SendRequest(ctx, tx.request); err != nil {
		tx.pendingTerm.Store(&termInfo{
			kind:   termTransportError,
			reason: errorutil.NewWrapperError(ErrTransportFailed, err),
		})
		_ = tx.fsm.FireCtx(ctx, trigTransportErr)
		return
	}

	tx.armTimerF()
	if !tx.transport.Reliable() {
		tx.eDelay = tx.timings.TimeE()
		tx.armTimerE(tx.eDelay)
	}
}

func (tx *nonInviteClientTransact) armTimerE(d time.Duration) {
	tx.timerE.arm(d, nil, func(any) {
		if err := tx.fsm.FireCtx(context.Background(), trigTimerE); err != nil {
			tx.log.Debug("stale timer E ignored", "error", err)
		}
	})
}

func (tx *nonInviteClientTransact) armTimerF() {
	tx.timerF.arm(tx.timings.TimeF(), nil, func(any) {
		tx.pendingTerm.Store(&termInfo{kind: termTimeout, reason: ErrTransactionTimedOut})
		if err := tx.fsm.FireCtx(context.Background(), trigTimerF); err != nil {
			tx.log.Debug("stale timer F ignored", "error", err)
		}
	})
}

func (tx *nonInviteClientTransact) armTimerK() {
	tx.timerK.arm(tx.timings.TimeK(), nil, func(any) {
		tx.pendingTerm.Store(&termInfo{kind: termNormal})
		if err := tx.fsm.FireCtx(context.Background(), trigTimerK); err != nil {
			tx.log.Debug("stale timer K ignored", "error", err)
		}
	})
}

func (tx *nonInviteClientTransact) cancelAllTimers() {
	tx.timerE.cancel()
	tx.timerF.cancel()
	tx.timerK.cancel()
}

// onTimerETrying resends and doubles the retransmit interval up to T2
// (spec §8 invariant 5: eᵢ₊₁ = min(2·eᵢ, T2)).
func (tx *nonInviteClientTransact) onTimerETrying(ctx context.Context, _ ...any) error {
	_ = tx.transport.SendRequest(ctx, tx.request)
	tx.eDelay *= 2
	if tx.eDelay > tx.timings.TimeT2() {
		tx.eDelay = tx.timings.TimeT2()
	}
	tx.armTimerE(tx.eDelay)
	return nil
}

// onTimerEProceeding resends at the fixed T2 interval (spec §4.3,
// "proceeding on Timer E: resend request; arm next Timer E at T2 (pinned)").
func (tx *nonInviteClientTransact) onTimerEProceeding(ctx context.Context, _ ...any) error {
	_ = tx.transport.SendRequest(ctx, tx.request)
	tx.eDelay = tx.timings.TimeT2()
	tx.armTimerE(tx.eDelay)
	return nil
}

func (tx *nonInviteClientTransact) enterProceeding(ctx context.Context, _ ...any) error {
	from := tx.State()
	if from == StateProceeding {
		return nil
	}
	tx.notifyStateChanged(ctx, from, StateProceeding)
	return nil
}

func (tx *nonInviteClientTransact) enterCompleted(ctx context.Context, _ ...any) error {
	from := tx.State()
	tx.timerE.cancel()
	tx.timerF.cancel()
	if !tx.transport.Reliable() {
		tx.armTimerK()
	}
	tx.notifyStateChanged(ctx, from, StateCompleted)
	return nil
}

func (tx *nonInviteClientTransact) onResponseTrying(ctx context.Context, args ...any) (stateless.State, error) {
	res, _ := args[0].(*Response)
	tx.notifyResponse(ctx, res)

	if res.Class() == 1 {
		return stateless.State(StateProceeding), nil
	}
	return tx.enterFinal(res)
}

func (tx *nonInviteClientTransact) onResponseProceeding(ctx context.Context, args ...any) (stateless.State, error) {
	res, _ := args[0].(*Response)
	tx.notifyResponse(ctx, res)

	if res.Class() == 1 {
		return stateless.State(StateProceeding), nil
	}
	return tx.enterFinal(res)
}

// enterFinal classifies a >= class-2 response: completed on an unreliable
// transport (Timer K dwell), or straight to terminated when the transport
// is reliable (spec §4.3 / §8 invariant 6 — no dwell on a reliable
// transport).
func (tx *nonInviteClientTransact) enterFinal(res *Response) (stateless.State, error) {
	tx.lastResponse.Store(res)
	if tx.transport.Reliable() {
		tx.pendingTerm.Store(&termInfo{kind: termNormal})
		return stateless.State(StateTerminated), nil
	}
	return stateless.State(StateCompleted), nil
}

// onResponseCompleted absorbs late retransmissions silently (spec §4.3,
// "completed on response: absorb silently").
func (tx *nonInviteClientTransact) onResponseCompleted(_ context.Context, _ ...any) error {
	return nil
}
