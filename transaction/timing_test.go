package transaction_test

import (
	"testing"
	"time"

	"github.com/ghettovoice/gosip/transaction"
)

func TestTimingConfig_Defaults(t *testing.T) {
	t.Parallel()

	var zero transaction.TimingConfig

	if got, want := zero.TimeA(), 600*time.Millisecond; got != want {
		t.Fatalf("TimeA() = %v, want %v", got, want)
	}
	if got, want := zero.TimeB(), 64*600*time.Millisecond; got != want {
		t.Fatalf("TimeB() = %v, want %v", got, want)
	}
	if got, want := zero.TimeE(), 500*time.Millisecond; got != want {
		t.Fatalf("TimeE() = %v, want %v", got, want)
	}
	if got, want := zero.TimeF(), 64*500*time.Millisecond; got != want {
		t.Fatalf("TimeF() = %v, want %v", got, want)
	}
	if got, want := zero.TimeD(), 32000*time.Millisecond; got != want {
		t.Fatalf("TimeD() = %v, want %v", got, want)
	}
	if got, want := zero.TimeK(), 5000*time.Millisecond; got != want {
		t.Fatalf("TimeK() = %v, want %v", got, want)
	}
}

func TestTimingConfig_T1AndInviteT1AreIndependent(t *testing.T) {
	t.Parallel()

	c := transaction.TimingConfig{T1: 100 * time.Millisecond, InviteT1: 700 * time.Millisecond}

	if got, want := c.TimeE(), 100*time.Millisecond; got != want {
		t.Fatalf("TimeE() = %v, want %v", got, want)
	}
	if got, want := c.TimeA(), 700*time.Millisecond; got != want {
		t.Fatalf("TimeA() = %v, want %v", got, want)
	}
	if got, want := c.TimeB(), 64*700*time.Millisecond; got != want {
		t.Fatalf("TimeB() = %v, want %v", got, want)
	}
	if got, want := c.TimeF(), 64*100*time.Millisecond; got != want {
		t.Fatalf("TimeF() = %v, want %v", got, want)
	}
}
