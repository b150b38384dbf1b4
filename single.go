package ledmanager

import (
	"time"

	"github.com/pkg/errors"
	"libdb.so/ledmanager/internal/pins"
)

// SingleLED is a single-color LED on one output pin.
type SingleLED struct {
	ledCommon
	drv pins.Driver
	pin pins.Pin

	toggleFn func()
}

var _ LED = (*SingleLED)(nil)

// NewSingleLED configures pin as an output and drives it off.
func NewSingleLED(drv pins.Driver, pin pins.Pin, timer Timer) (*SingleLED, error) {
	if err := drv.ConfigureOutput(pin); err != nil {
		return nil, errors.Wrapf(err, "failed to configure %s", pin)
	}

	l := &SingleLED{
		ledCommon: ledCommon{typ: Single, timer: timer},
		drv:       drv,
		pin:       pin,
	}
	l.toggleFn = l.toggle
	l.illuminate(false)

	return l, nil
}

// Pin returns the output pin.
func (l *SingleLED) Pin() pins.Pin {
	return l.pin
}

// SetState sets the target state with DefaultInterval.
func (l *SingleLED) SetState(state LEDState) {
	l.SetStateInterval(state, DefaultInterval)
}

// SetStateInterval sets the target state. Any running blink is cancelled
// first, so the new pattern always starts a fresh period. Alternate and
// unknown states are recorded but have no effect on a single LED.
func (l *SingleLED) SetStateInterval(state LEDState, interval time.Duration) {
	l.disarm()
	l.state = state

	switch state {
	case On, BlinkOn:
		l.illuminated.Store(true)
		l.illuminate(true)
		if state == BlinkOn {
			l.arm(l.toggleFn, interval)
		}

	case Off, BlinkOff:
		l.illuminated.Store(false)
		l.illuminate(false)
		if state == BlinkOff {
			l.arm(l.toggleFn, interval)
		}
	}
}

func (l *SingleLED) illuminate(on bool) {
	// Write errors are the driver's to report; the callback has no caller
	// to return them to.
	_ = l.drv.Write(l.pin, l.typ.level(on))
}

// toggle runs on every timer tick while blinking.
func (l *SingleLED) toggle() {
	on := !l.illuminated.Load()
	l.illuminated.Store(on)
	l.illuminate(on)
}
