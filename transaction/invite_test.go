package transaction_test

import (
	"testing"
	"time"

	"github.com/ghettovoice/gosip/internal/types"
	"github.com/ghettovoice/gosip/transaction"
)

func TestInviteClient_ProceedingThenOK_TerminatesNormally(t *testing.T) {
	t.Parallel()

	t1 := 20 * time.Millisecond
	timings := fastTimings(t1)

	tp := newStubTransport(false)
	core := newStubCore()
	req := newTestInvite("z9hG4bK-invite-ok")

	tx, err := (transaction.Dispatcher{}).Start(t.Context(), req, tp, core, transaction.ClientTransactionOptions{Timings: timings})
	if err != nil {
		t.Fatalf("Dispatcher.Start error = %v, want nil", err)
	}

	tp.waitSend(t, 100*time.Millisecond)
	if got := tx.State(); got != transaction.StateCalling {
		t.Fatalf("State() = %q, want %q", got, transaction.StateCalling)
	}

	tx.RecvResponse(t.Context(), newTestResponse(req, types.ResponseStatusRinging))
	if got := tx.State(); got != transaction.StateProceeding {
		t.Fatalf("State() after 180 = %q, want %q", got, transaction.StateProceeding)
	}
	tp.ensureNoSend(t, 3*t1)

	tx.RecvResponse(t.Context(), newTestResponse(req, types.ResponseStatusOK))
	call := core.waitTerminated(t, 200*time.Millisecond)
	if !call.normal {
		t.Fatalf("terminated normal = %v, want true", call.normal)
	}
	if got := tx.State(); got != transaction.StateTerminated {
		t.Fatalf("State() = %q, want %q", got, transaction.StateTerminated)
	}
	if core.responseCount() != 2 {
		t.Fatalf("Core saw %d responses, want 2", core.responseCount())
	}
	tp.ensureNoSend(t, 3*t1)
}

func TestInviteClient_BusyHere_SendsAckAndDwellsTimerD(t *testing.T) {
	t.Parallel()

	t1 := 10 * time.Millisecond
	timings := fastTimings(t1)

	tp := newStubTransport(false)
	core := newStubCore()
	req := newTestInvite("z9hG4bK-invite-busy")

	tx, err := (transaction.Dispatcher{}).Start(t.Context(), req, tp, core, transaction.ClientTransactionOptions{Timings: timings})
	if err != nil {
		t.Fatalf("Dispatcher.Start error = %v, want nil", err)
	}
	tp.waitSend(t, 100*time.Millisecond)

	res := newTestResponse(req, types.ResponseStatusBusyHere)
	tx.RecvResponse(t.Context(), res)

	ack := tp.waitSend(t, 100*time.Millisecond)
	if ack.Method != types.RequestMethodAck {
		t.Fatalf("second send method = %q, want ACK", ack.Method)
	}
	if got := tx.State(); got != transaction.StateCompleted {
		t.Fatalf("State() = %q, want %q", got, transaction.StateCompleted)
	}

	// Retransmitted final must resend the SAME ack object (invariant 2).
	retrans := res
	tx.RecvResponse(t.Context(), retrans)
	ack2 := tp.waitSend(t, 100*time.Millisecond)
	if ack2.Method != types.RequestMethodAck {
		t.Fatalf("retransmit send method = %q, want ACK", ack2.Method)
	}
	if ack2 != ack {
		t.Fatalf("ACK retransmit is not the same object as the original: %p != %p", ack2, ack)
	}

	call := core.waitTerminated(t, timings.TimeD()+200*time.Millisecond)
	if !call.normal {
		t.Fatalf("terminated normal = %v, want true", call.normal)
	}
	tp.ensureNoSend(t, 3*t1)
}

func TestInviteClient_ReliableTransport_TerminatesImmediatelyNoTimerD(t *testing.T) {
	t.Parallel()

	t1 := 10 * time.Millisecond
	timings := fastTimings(t1)

	tp := newStubTransport(true)
	core := newStubCore()
	req := newTestInvite("z9hG4bK-invite-reliable")

	tx, err := (transaction.Dispatcher{}).Start(t.Context(), req, tp, core, transaction.ClientTransactionOptions{Timings: timings})
	if err != nil {
		t.Fatalf("Dispatcher.Start error = %v, want nil", err)
	}
	tp.waitSend(t, 100*time.Millisecond)

	tx.RecvResponse(t.Context(), newTestResponse(req, types.ResponseStatusBusyHere))
	tp.waitSend(t, 100*time.Millisecond) // the ACK

	// Must terminate well before Timer D would have expired, since it is
	// never armed on a reliable transport (spec §8 invariant 6).
	call := core.waitTerminated(t, 3*t1)
	if !call.normal {
		t.Fatalf("terminated normal = %v, want true", call.normal)
	}
	if got := tx.State(); got != transaction.StateTerminated {
		t.Fatalf("State() = %q, want %q", got, transaction.StateTerminated)
	}
}

func TestInviteClient_NoResponse_RetransmitsAndTimesOut(t *testing.T) {
	t.Parallel()

	t1 := 5 * time.Millisecond
	timings := fastTimings(t1) // TimeB = 64*t1 = 320ms

	tp := newStubTransport(false)
	core := newStubCore()
	req := newTestInvite("z9hG4bK-invite-timeout")

	tx, err := (transaction.Dispatcher{}).Start(t.Context(), req, tp, core, transaction.ClientTransactionOptions{Timings: timings})
	if err != nil {
		t.Fatalf("Dispatcher.Start error = %v, want nil", err)
	}

	tp.waitSend(t, 100*time.Millisecond) // initial

	call := core.waitTerminated(t, timings.TimeB()+300*time.Millisecond)
	if call.normal {
		t.Fatalf("terminated normal = %v, want false (timeout)", call.normal)
	}
	if got := tx.State(); got != transaction.StateTerminated {
		t.Fatalf("State() = %q, want %q", got, transaction.StateTerminated)
	}
	if n := tp.sendCount(); n < 2 {
		t.Fatalf("send count = %d, want at least one retransmit", n)
	}
}

func TestInviteClient_ReliableTransport_NoRetransmission(t *testing.T) {
	t.Parallel()

	t1 := 10 * time.Millisecond
	timings := fastTimings(t1)

	tp := newStubTransport(true)
	core := newStubCore()
	req := newTestInvite("z9hG4bK-invite-no-retrans")

	_, err := (transaction.Dispatcher{}).Start(t.Context(), req, tp, core, transaction.ClientTransactionOptions{Timings: timings})
	if err != nil {
		t.Fatalf("Dispatcher.Start error = %v, want nil", err)
	}
	tp.waitSend(t, 100*time.Millisecond)

	// Spec §8 invariant 6: reliable transports never retransmit.
	tp.ensureNoSend(t, 5*t1)
}

func TestInviteClient_Terminate_FromCalling(t *testing.T) {
	t.Parallel()

	t1 := 20 * time.Millisecond
	timings := fastTimings(t1)

	tp := newStubTransport(false)
	core := newStubCore()
	req := newTestInvite("z9hG4bK-invite-terminate")

	tx, err := (transaction.Dispatcher{}).Start(t.Context(), req, tp, core, transaction.ClientTransactionOptions{Timings: timings})
	if err != nil {
		t.Fatalf("Dispatcher.Start error = %v, want nil", err)
	}
	tp.waitSend(t, 100*time.Millisecond)

	tx.Terminate(t.Context())
	call := core.waitTerminated(t, 100*time.Millisecond)
	if call.normal {
		t.Fatalf("terminated normal = %v, want false (shutdown)", call.normal)
	}

	// Idempotent: a second Terminate must not panic or double-notify.
	tx.Terminate(t.Context())
	tp.ensureNoSend(t, 3*t1)
}

func TestInviteClient_LateResponseAfterTerminated_IsDropped(t *testing.T) {
	t.Parallel()

	t1 := 10 * time.Millisecond
	timings := fastTimings(t1)

	tp := newStubTransport(true)
	core := newStubCore()
	req := newTestInvite("z9hG4bK-invite-late")

	tx, err := (transaction.Dispatcher{}).Start(t.Context(), req, tp, core, transaction.ClientTransactionOptions{Timings: timings})
	if err != nil {
		t.Fatalf("Dispatcher.Start error = %v, want nil", err)
	}
	tp.waitSend(t, 100*time.Millisecond)

	tx.RecvResponse(t.Context(), newTestResponse(req, types.ResponseStatusOK))
	core.waitTerminated(t, 100*time.Millisecond)

	before := core.responseCount()
	tx.RecvResponse(t.Context(), newTestResponse(req, types.ResponseStatusRinging))
	if after := core.responseCount(); after != before {
		t.Fatalf("response delivered after termination: before=%d after=%d", before, after)
	}
}
