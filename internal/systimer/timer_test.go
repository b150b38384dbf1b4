package systimer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPool_BeginFailsWhenExhausted(t *testing.T) {
	pool := NewPool(2)

	a, b, c := pool.NewTimer(), pool.NewTimer(), pool.NewTimer()
	if !a.Begin() || !b.Begin() {
		t.Fatalf("expected first two timers to begin")
	}
	if c.Begin() {
		t.Fatalf("expected third timer to fail with an exhausted pool")
	}
	if !a.Begin() {
		t.Fatalf("Begin on a claimed timer must stay true")
	}
	if n := pool.Available(); n != 0 {
		t.Fatalf("available=%d want 0", n)
	}

	a.Release()
	if n := pool.Available(); n != 1 {
		t.Fatalf("available=%d want 1", n)
	}
	if !c.Begin() {
		t.Fatalf("expected released channel to be reusable")
	}
}

func TestTimer_RepeatingTicksUntilDisarm(t *testing.T) {
	timer := NewPool(1).NewTimer()
	if !timer.Begin() {
		t.Fatalf("Begin failed")
	}

	var ticks atomic.Int64
	tickCh := make(chan struct{}, 16)
	timer.AttachInterrupt(func() {
		ticks.Add(1)
		select {
		case tickCh <- struct{}{}:
		default:
		}
	})
	timer.SetInterval(2 * time.Millisecond)
	timer.Arm(true)

	for i := 0; i < 3; i++ {
		select {
		case <-tickCh:
		case <-time.After(time.Second):
			t.Fatalf("tick %d never arrived", i)
		}
	}

	timer.Disarm()
	if timer.Armed() {
		t.Fatalf("expected disarmed timer")
	}

	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if got := ticks.Load(); got != after {
		t.Fatalf("ticks=%d after disarm want %d", got, after)
	}
}

func TestTimer_OneShot(t *testing.T) {
	timer := NewPool(1).NewTimer()
	timer.Begin()

	tickCh := make(chan struct{}, 4)
	timer.AttachInterrupt(func() { tickCh <- struct{}{} })
	timer.SetInterval(time.Millisecond)
	timer.Arm(false)

	select {
	case <-tickCh:
	case <-time.After(time.Second):
		t.Fatalf("one-shot never fired")
	}

	time.Sleep(10 * time.Millisecond)
	if n := len(tickCh); n != 0 {
		t.Fatalf("one-shot fired %d extra times", n)
	}
	timer.Disarm()
}

func TestTimer_ArmWithoutBeginIsNoop(t *testing.T) {
	timer := NewPool(0).NewTimer()
	if timer.Begin() {
		t.Fatalf("expected Begin to fail on empty pool")
	}

	timer.AttachInterrupt(func() { t.Errorf("callback ran on unclaimed timer") })
	timer.SetInterval(time.Millisecond)
	timer.Arm(true)

	if timer.Armed() {
		t.Fatalf("unclaimed timer must not arm")
	}
	time.Sleep(5 * time.Millisecond)
}

func TestTimer_RearmReplacesRegistration(t *testing.T) {
	timer := NewPool(1).NewTimer()
	timer.Begin()

	var first, second atomic.Int64
	timer.AttachInterrupt(func() { first.Add(1) })
	timer.SetInterval(time.Millisecond)
	timer.Arm(true)

	timer.AttachInterrupt(func() { second.Add(1) })
	timer.Arm(true)
	stale := first.Load()

	deadline := time.Now().Add(time.Second)
	for second.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	timer.Disarm()

	if second.Load() < 3 {
		t.Fatalf("second callback ticks=%d want >= 3", second.Load())
	}
	if got := first.Load(); got != stale {
		t.Fatalf("old callback kept running: %d -> %d", stale, got)
	}
}

func TestManual(t *testing.T) {
	var m Manual
	var n int
	m.AttachInterrupt(func() { n++ })
	m.SetInterval(100 * time.Millisecond)

	m.Arm(true)
	if m.Armed() {
		t.Fatalf("manual timer armed before Begin")
	}

	m.Begin()
	m.Arm(true)
	m.Arm(true)
	if m.Active() != 1 {
		t.Fatalf("active=%d want 1", m.Active())
	}
	if m.Arms() != 2 {
		t.Fatalf("arms=%d want 2", m.Arms())
	}

	m.Fire()
	m.Fire()
	if n != 2 {
		t.Fatalf("callbacks=%d want 2", n)
	}

	m.Disarm()
	if m.Fire() {
		t.Fatalf("Fire on disarmed timer returned true")
	}

	m.Arm(false)
	m.Fire()
	if m.Armed() {
		t.Fatalf("one-shot stayed armed after firing")
	}
}

func TestInstrumented(t *testing.T) {
	m := &Manual{}
	timer := Instrument(m, "instrumented_test", nil)
	timer.Begin()

	var n int
	timer.AttachInterrupt(func() { n++ })
	timer.SetInterval(time.Second)
	timer.Arm(true)

	m.Fire()
	m.Fire()

	if n != 2 {
		t.Fatalf("callbacks=%d want 2", n)
	}
	if got := testutil.ToFloat64(timerTicks.WithLabelValues("instrumented_test")); got != 2 {
		t.Fatalf("ticks metric=%v want 2", got)
	}
	if got := testutil.ToFloat64(timerArms.WithLabelValues("instrumented_test")); got != 1 {
		t.Fatalf("arms metric=%v want 1", got)
	}
}
