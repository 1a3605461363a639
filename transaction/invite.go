package transaction

import (
	"context"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/ghettovoice/gosip/internal/errorutil"
)

// inviteClientTransact implements RFC 3261 §17.1.1 (spec §4.2). It carries
// exactly the four states spec.md names — calling, proceeding, completed,
// terminated. The source's RFC 6026 extension (a fifth "accepted" state and
// Timer M, letting a 2xx be absorbed while still tracking retransmissions)
// is intentionally not carried forward: a 2xx always moves straight to
// terminated, and ACKing it is the Core's job (RFC 3261 §13.2.2.4, spec §9).
type inviteClientTransact struct {
	*baseTransact

	timerA timerSlot // retransmit, Calling only, unreliable only
	timerB timerSlot // absolute transaction timeout, Calling+Proceeding
	timerD timerSlot // completed dwell, unreliable only

	aDelay time.Duration
}

func newInviteClientFSM(req *Request, transport ClientTransport, core Core, opts ClientTransactionOptions) *inviteClientTransact {
	tx := &inviteClientTransact{
		baseTransact: newBaseTransact(TypeInviteClient, StateCalling, req, transport, core, opts),
	}
	tx.cancelTimers = tx.cancelAllTimers

	fsm := stateless.NewStateMachine(stateless.State(StateCalling))
	tx.fsm = fsm

	fsm.Configure(stateless.State(StateCalling)).
		InternalTransition(stateless.Trigger(trigTimerA), tx.onTimerA).
		PermitDynamic(stateless.Trigger(trigResponse), tx.onResponse).
		Permit(stateless.Trigger(trigTimerB), stateless.State(StateTerminated)).
		Permit(stateless.Trigger(trigTransportErr), stateless.State(StateTerminated)).
		Permit(stateless.Trigger(trigStop), stateless.State(StateTerminated))

	fsm.Configure(stateless.State(StateProceeding)).
		OnEntry(tx.enterProceeding).
		PermitDynamic(stateless.Trigger(trigResponse), tx.onResponse).
		Permit(stateless.Trigger(trigTimerB), stateless.State(StateTerminated)).
		Permit(stateless.Trigger(trigTransportErr), stateless.State(StateTerminated)).
		Permit(stateless.Trigger(trigStop), stateless.State(StateTerminated))

	fsm.Configure(stateless.State(StateCompleted)).
		OnEntry(tx.enterCompleted).
		InternalTransition(stateless.Trigger(trigResponse), tx.onResponseCompleted).
		Permit(stateless.Trigger(trigTimerD), stateless.State(StateTerminated)).
		Permit(stateless.Trigger(trigTransportErr), stateless.State(StateTerminated)).
		Permit(stateless.Trigger(trigStop), stateless.State(StateTerminated))

	fsm.Configure(stateless.State(StateTerminated)).
		OnEntry(tx.enterTerminated)

	return tx
}

// start sends the initial INVITE and arms Timer B (always) and Timer A
// (unreliable transports only) — spec §4.2, "calling entry".
func (tx *inviteClientTransact) start(ctx context.Context) {
	if err := tx.transport.SendRequest(ctx, tx.request); err != nil {
		tx.pendingTerm.Store(&termInfo{
			kind:   termTransportError,
			reason: errorutil.NewWrapperError(ErrTransportFailed, err),
		})
		_ = tx.fsm.FireCtx(ctx, trigTransportErr)
		return
	}

	tx.armTimerB()
	if !tx.transport.Reliable() {
		tx.aDelay = tx.timings.TimeA()
		tx.armTimerA(tx.aDelay)
	}
}

func (tx *inviteClientTransact) armTimerA(d time.Duration) {
	tx.timerA.arm(d, nil, func(any) {
		if err := tx.fsm.FireCtx(context.Background(), trigTimerA); err != nil {
			tx.log.Debug("stale timer A ignored", "error", err)
		}
	})
}

func (tx *inviteClientTransact) armTimerB() {
	tx.timerB.arm(tx.timings.TimeB(), nil, func(any) {
		tx.pendingTerm.Store(&termInfo{kind: termTimeout, reason: ErrTransactionTimedOut})
		if err := tx.fsm.FireCtx(context.Background(), trigTimerB); err != nil {
			tx.log.Debug("stale timer B ignored", "error", err)
		}
	})
}

func (tx *inviteClientTransact) armTimerD() {
	tx.timerD.arm(tx.timings.TimeD(), nil, func(any) {
		tx.pendingTerm.Store(&termInfo{kind: termNormal})
		if err := tx.fsm.FireCtx(context.Background(), trigTimerD); err != nil {
			tx.log.Debug("stale timer D ignored", "error", err)
		}
	})
}

func (tx *inviteClientTransact) cancelAllTimers() {
	tx.timerA.cancel()
	tx.timerB.cancel()
	tx.timerD.cancel()
}

// onTimerA resends the INVITE and doubles the retransmit interval
// uncapped (spec §4.2, §8 invariant 5). It only runs while Calling is
// active — once the machine leaves Calling, trigTimerA is no longer
// permitted and any in-flight fire is silently discarded, which is the
// stale-timer tolerance spec §9 asks for.
func (tx *inviteClientTransact) onTimerA(ctx context.Context, _ ...any) error {
	_ = tx.transport.SendRequest(ctx, tx.request)
	tx.aDelay *= 2
	tx.armTimerA(tx.aDelay)
	return nil
}

func (tx *inviteClientTransact) enterProceeding(ctx context.Context, _ ...any) error {
	from := tx.State()
	if from == StateProceeding {
		return nil
	}
	tx.timerA.cancel() // retransmission ceases; Timer B keeps running
	tx.notifyStateChanged(ctx, from, StateProceeding)
	return nil
}

// enterCompleted runs only for the unreliable path — the reliable,
// immediate-terminate path is decided directly in onResponse (see its
// doc comment) so Timer D is never armed for a transaction that should not
// dwell at all.
func (tx *inviteClientTransact) enterCompleted(ctx context.Context, _ ...any) error {
	from := tx.State()
	tx.timerA.cancel()
	tx.timerB.cancel()
	tx.armTimerD()
	tx.notifyStateChanged(ctx, from, StateCompleted)
	return nil
}

// onResponse handles a response received in Calling or Proceeding. It
// notifies the Core before deciding the destination state, satisfying the
// "Core sees provisional responses even for transactions that immediately
// terminate" rule (spec §6.2) without relying on stateless's OnEntry
// ordering. For a non-2xx final it also builds and sends the ACK and
// decides, right here, whether the transport being reliable means skipping
// Completed's dwell entirely and terminating immediately (spec §4.2,
// "completed entry... if reliable -> terminated (normal)") instead of
// visiting Completed only to leave it on the next tick.
func (tx *inviteClientTransact) onResponse(ctx context.Context, args ...any) (stateless.State, error) {
	res, _ := args[0].(*Response)
	tx.notifyResponse(ctx, res)

	switch res.Class() {
	case 1:
		return stateless.State(StateProceeding), nil
	case 2:
		tx.pendingTerm.Store(&termInfo{kind: termNormal})
		return stateless.State(StateTerminated), nil
	default:
		tx.lastResponse.Store(res)
		ack := BuildAck(tx.request, res)
		tx.ack.Store(ack)

		if err := tx.transport.SendRequest(ctx, ack); err != nil {
			tx.pendingTerm.Store(&termInfo{
				kind:   termTransportError,
				reason: errorutil.NewWrapperError(ErrTransportFailed, err),
			})
			return stateless.State(StateTerminated), nil
		}

		if tx.transport.Reliable() {
			tx.pendingTerm.Store(&termInfo{kind: termNormal})
			return stateless.State(StateTerminated), nil
		}
		return stateless.State(StateCompleted), nil
	}
}

// onResponseCompleted handles retransmissions of the final response while
// Completed: the stored ACK is resent byte-for-byte, never rebuilt
// (spec §8 invariant 2).
func (tx *inviteClientTransact) onResponseCompleted(ctx context.Context, args ...any) error {
	res, _ := args[0].(*Response)
	if res.Class() >= 3 {
		if ack := tx.ack.Load(); ack != nil {
			_ = tx.transport.SendRequest(ctx, ack)
		}
	}
	return nil
}
