package ledmanager

import (
	"sync/atomic"
	"time"

	"libdb.so/ledmanager/internal/systimer"
)

// Timer schedules a periodic callback for one LED. The callback is run with
// other timer callbacks held off, so it must be short and must not block.
type Timer = systimer.Interface

// LED is implemented by SingleLED and RGBLED.
type LED interface {
	// Begin acquires the timer resource. It must be called once before the
	// first SetState. It returns false if no timer is available, in which
	// case periodic states only show their initial phase.
	Begin() bool
	// SetState sets the target state with DefaultInterval.
	SetState(state LEDState)
	// SetStateInterval sets the target state. Periodic states toggle or
	// advance once per interval.
	SetStateInterval(state LEDState, interval time.Duration)
	// GetState returns the last requested state.
	GetState() LEDState
}

// ledCommon is the state shared by every LED type.
//
// illuminated is written from both the foreground and the timer callback.
// The foreground only writes it after disarming, so there is a single writer
// at any time; atomics make the hand-over visible across goroutines.
type ledCommon struct {
	typ         LEDType
	state       LEDState
	illuminated atomic.Bool
	armed       bool
	begun       bool
	timer       Timer
}

// Begin acquires the timer resource.
func (c *ledCommon) Begin() bool {
	if c.timer == nil {
		return false
	}
	c.begun = c.timer.Begin()
	return c.begun
}

// GetState returns the last requested state, including unrecognized ones.
func (c *ledCommon) GetState() LEDState {
	return c.state
}

// Type returns the wiring type of the LED.
func (c *ledCommon) Type() LEDType {
	return c.typ
}

// Illuminated returns the logical on/off flag last written to the output.
func (c *ledCommon) Illuminated() bool {
	return c.illuminated.Load()
}

// Armed returns true if a timer callback is scheduled for this LED.
func (c *ledCommon) Armed() bool {
	return c.armed
}

// disarm cancels any scheduled callback. When it returns the callback is no
// longer running and will not run again.
func (c *ledCommon) disarm() {
	if !c.armed {
		return
	}
	c.timer.Disarm()
	c.armed = false
}

// arm registers f as a repeating callback. Without a timer, nothing is
// scheduled and the LED keeps its initial phase.
func (c *ledCommon) arm(f func(), interval time.Duration) {
	if !c.begun {
		return
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	c.timer.AttachInterrupt(f)
	c.timer.SetInterval(interval)
	c.timer.Arm(true)
	c.armed = true
}
