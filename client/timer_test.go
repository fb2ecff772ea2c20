package client

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdown_tick(t *testing.T) {
	var fired int32
	cd := NewCountdown(2, func() { atomic.AddInt32(&fired, 1) })

	if finished := cd.tick(); finished {
		t.Error("tick() finished after first tick; want another tick")
	}
	if got := cd.Remaining(); got != 1 {
		t.Errorf("Remaining() = %d; want 1", got)
	}
	if finished := cd.tick(); !finished {
		t.Error("tick() did not finish at zero")
	}
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("submit fired %d times; want exactly 1", got)
	}

	// further ticks must not fire again
	for i := 0; i < 3; i++ {
		if finished := cd.tick(); !finished {
			t.Error("tick() kept running after firing")
		}
	}
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("submit fired %d times after extra ticks; want 1", got)
	}
}

func TestCountdown_Stop(t *testing.T) {
	var fired int32
	cd := NewCountdown(1, func() { atomic.AddInt32(&fired, 1) })

	cd.Stop()
	cd.Stop() // idempotent

	if finished := cd.tick(); !finished {
		t.Error("tick() still running after Stop()")
	}
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("submit fired %d times after Stop(); want 0", got)
	}
}

func TestCountdown_Start(t *testing.T) {
	var fired int32
	done := make(chan struct{})
	cd := NewCountdown(1, func() {
		atomic.AddInt32(&fired, 1)
		close(done)
	})
	cd.Start()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("submit did not fire")
	}
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("submit fired %d times; want 1", got)
	}
}
