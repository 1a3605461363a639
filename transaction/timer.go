package transaction

import (
	"sync/atomic"
	"time"

	"github.com/ghettovoice/gosip/internal/timeutil"
)

// TimerHandle identifies one armed timer (spec §4.5, component C1). Its
// identity — not its payload — is what a fire callback compares against the
// owning slot to tell whether it is still current.
type TimerHandle struct {
	timer   *timeutil.SerializableTimer
	payload any
}

// Payload returns the opaque value the timer was armed with.
func (h *TimerHandle) Payload() any {
	if h == nil {
		return nil
	}
	return h.payload
}

// TimerService schedules one-shot timers backed by
// [timeutil.SerializableTimer], the same timer primitive the ambient stack
// uses elsewhere.
type TimerService struct{}

// Arm schedules fn to run once, after d, with payload passed back to fn.
func (TimerService) Arm(d time.Duration, payload any, fn func(payload any)) *TimerHandle {
	h := &TimerHandle{payload: payload}
	h.timer = timeutil.AfterFunc(d, func() { fn(h.payload) })
	return h
}

// Cancel stops h. Cancelling a nil handle is a no-op.
func (TimerService) Cancel(h *TimerHandle) {
	if h == nil {
		return
	}
	h.timer.Stop()
}

// timerSlot holds the single currently-armed timer for one logical role
// (Timer A, Timer D, ...) on a transaction. Re-arming or cancelling
// atomically replaces the stored handle, so a fire callback racing with a
// cancellation can tell by pointer identity whether it is still current —
// this is the stale-timer tolerance spec §9 requires, applied at the timer
// layer in addition to the state machine's own trigger-permission gating.
type timerSlot struct {
	svc  TimerService
	slot atomic.Pointer[TimerHandle]
}

func (s *timerSlot) arm(d time.Duration, payload any, onFire func(payload any)) {
	var h *TimerHandle
	h = s.svc.Arm(d, payload, func(p any) {
		if s.slot.Load() != h {
			return
		}
		onFire(p)
	})
	s.slot.Store(h)
}

func (s *timerSlot) cancel() {
	if h := s.slot.Swap(nil); h != nil {
		s.svc.Cancel(h)
	}
}
