package client

import (
	"sync"
	"time"
)

// Countdown ticks down the remaining quiz time once per second and fires
// the submit callback exactly once when it reaches zero. Stop tears the
// ticker down on navigation away or after a manual submit; a stopped
// countdown never fires.
type Countdown struct {
	onExpire func()

	mutex     sync.Mutex
	remaining int
	done      chan struct{}
	stopped   bool
	fired     bool
}

func NewCountdown(seconds int, onExpire func()) *Countdown {
	return &Countdown{
		onExpire:  onExpire,
		remaining: seconds,
		done:      make(chan struct{}),
	}
}

// Start launches the ticker. It returns immediately.
func (cd *Countdown) Start() {
	go cd.run(time.NewTicker(time.Second))
}

func (cd *Countdown) run(ticker *time.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-cd.done:
			return
		case <-ticker.C:
			if cd.tick() {
				return
			}
		}
	}
}

// tick decrements the remaining time; at zero it fires the callback and
// reports the countdown finished.
func (cd *Countdown) tick() (finished bool) {
	cd.mutex.Lock()
	if cd.stopped || cd.fired {
		cd.mutex.Unlock()
		return true
	}
	cd.remaining--
	if cd.remaining > 0 {
		cd.mutex.Unlock()
		return false
	}
	cd.remaining = 0
	cd.fired = true
	cd.mutex.Unlock()

	cd.onExpire()
	return true
}

// Remaining returns the seconds left.
func (cd *Countdown) Remaining() int {
	cd.mutex.Lock()
	defer cd.mutex.Unlock()
	return cd.remaining
}

// Stop tears the countdown down. Safe to call more than once; after Stop
// the callback never fires.
func (cd *Countdown) Stop() {
	cd.mutex.Lock()
	defer cd.mutex.Unlock()

	if cd.stopped {
		return
	}
	cd.stopped = true
	close(cd.done)
}
