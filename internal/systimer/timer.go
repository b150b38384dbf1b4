// Package systimer provides periodic callback timers drawn from a finite pool
// of channels, the way a microcontroller hands out hardware timers.
package systimer

import (
	"sync"
	"time"
)

// Interface is the set of operations an LED needs from a timer.
type Interface interface {
	// Begin claims the underlying timer resource. It returns false when no
	// resource is available.
	Begin() bool
	// AttachInterrupt registers the callback run on every expiry.
	AttachInterrupt(f func())
	// SetInterval sets the period used by the next Arm.
	SetInterval(d time.Duration)
	// Arm schedules the callback, once or repeatedly.
	Arm(repeating bool)
	// Disarm cancels the scheduled callback. The callback never runs after
	// Disarm returns.
	Disarm()
}

var critMu sync.Mutex

// critical runs f with every other timer callback held off.
func critical(f func()) {
	critMu.Lock()
	f()
	critMu.Unlock()
}

// Pool is a fixed set of timer channels.
type Pool struct {
	slots chan struct{}
}

// NewPool creates a pool with n channels.
func NewPool(n int) *Pool {
	p := &Pool{slots: make(chan struct{}, n)}
	for i := 0; i < n; i++ {
		p.slots <- struct{}{}
	}
	return p
}

// Available returns the number of unclaimed channels.
func (p *Pool) Available() int {
	return len(p.slots)
}

// NewTimer returns a timer that claims its channel from p on Begin.
func (p *Pool) NewTimer() *Timer {
	return &Timer{pool: p}
}

// Timer is a goroutine-backed periodic timer. Its methods must be called from
// a single goroutine, and never from the timer's own callback.
type Timer struct {
	pool     *Pool
	claimed  bool
	callback func()
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

var _ Interface = (*Timer)(nil)

// Begin implements Interface.
func (t *Timer) Begin() bool {
	if t.claimed {
		return true
	}
	select {
	case <-t.pool.slots:
		t.claimed = true
		return true
	default:
		return false
	}
}

// Release disarms the timer and returns its channel to the pool.
func (t *Timer) Release() {
	t.Disarm()
	if t.claimed {
		t.claimed = false
		t.pool.slots <- struct{}{}
	}
}

// AttachInterrupt implements Interface.
func (t *Timer) AttachInterrupt(f func()) {
	t.callback = f
}

// SetInterval implements Interface.
func (t *Timer) SetInterval(d time.Duration) {
	t.interval = d
}

// Armed returns true if a callback is scheduled.
func (t *Timer) Armed() bool {
	return t.stop != nil
}

// Arm implements Interface. Arming an unclaimed timer, or one without a
// callback or a positive interval, does nothing.
func (t *Timer) Arm(repeating bool) {
	t.Disarm()

	if !t.claimed || t.callback == nil || t.interval <= 0 {
		return
	}

	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	go run(t.callback, t.interval, repeating, t.stop, t.done)
}

// Disarm implements Interface.
func (t *Timer) Disarm() {
	if t.stop == nil {
		return
	}
	close(t.stop)
	<-t.done
	t.stop = nil
	t.done = nil
}

func run(f func(), interval time.Duration, repeating bool, stop, done chan struct{}) {
	defer close(done)

	if !repeating {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		select {
		case <-stop:
		case <-timer.C:
			fire(f, stop)
		}
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fire(f, stop)
		}
	}
}

// fire runs f unless stop closed while the tick was pending.
func fire(f func(), stop <-chan struct{}) {
	critical(func() {
		select {
		case <-stop:
		default:
			f()
		}
	})
}
