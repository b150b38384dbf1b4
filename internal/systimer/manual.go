package systimer

import "time"

// Manual is a timer that only expires when Fire is called. It is used by
// tests and by the simulator to step patterns deterministically.
type Manual struct {
	// Fail makes Begin report that no timer resource is available.
	Fail bool

	begun     bool
	armed     bool
	repeating bool
	callback  func()
	interval  time.Duration
	arms      int
}

var _ Interface = (*Manual)(nil)

// Begin implements Interface.
func (m *Manual) Begin() bool {
	if m.Fail {
		return false
	}
	m.begun = true
	return true
}

// AttachInterrupt implements Interface.
func (m *Manual) AttachInterrupt(f func()) { m.callback = f }

// SetInterval implements Interface.
func (m *Manual) SetInterval(d time.Duration) { m.interval = d }

// Arm implements Interface.
func (m *Manual) Arm(repeating bool) {
	m.Disarm()
	if !m.begun || m.callback == nil || m.interval <= 0 {
		return
	}
	m.armed = true
	m.repeating = repeating
	m.arms++
}

// Disarm implements Interface.
func (m *Manual) Disarm() { m.armed = false }

// Fire runs the callback as if the timer expired. It returns false if nothing
// was armed.
func (m *Manual) Fire() bool {
	if !m.armed {
		return false
	}
	if !m.repeating {
		m.armed = false
	}
	critical(m.callback)
	return true
}

// Armed returns true if a callback is scheduled.
func (m *Manual) Armed() bool { return m.armed }

// Active returns the number of live registrations, which is never more than
// one.
func (m *Manual) Active() int {
	if m.armed {
		return 1
	}
	return 0
}

// Arms returns how many times the timer was successfully armed.
func (m *Manual) Arms() int { return m.arms }

// Interval returns the interval of the current registration.
func (m *Manual) Interval() time.Duration { return m.interval }

// Repeating returns true if the current registration repeats.
func (m *Manual) Repeating() bool { return m.repeating }
