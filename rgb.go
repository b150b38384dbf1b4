package ledmanager

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"libdb.so/ledmanager/internal/led"
	"libdb.so/ledmanager/internal/pins"
)

// RGBLED is a three-channel LED with one pin per channel.
//
// Blink states flash the first configured color. Alternate steps through the
// whole sequence, one color per tick.
type RGBLED struct {
	ledCommon
	drv              pins.Driver
	red, green, blue pins.Pin

	colors atomic.Pointer[Sequence]
	index  atomic.Uint32

	toggleFn    func()
	alternateFn func()
}

var _ LED = (*RGBLED)(nil)

// NewRGBLED configures the three pins as outputs and drives every channel
// off. Pass Cathode for common-cathode wiring, Anode for common-anode.
func NewRGBLED(drv pins.Driver, red, green, blue pins.Pin, typ LEDType, timer Timer) (*RGBLED, error) {
	for _, pin := range []pins.Pin{red, green, blue} {
		if err := drv.ConfigureOutput(pin); err != nil {
			return nil, errors.Wrapf(err, "failed to configure %s", pin)
		}
	}

	l := &RGBLED{
		ledCommon: ledCommon{typ: typ, timer: timer},
		drv:       drv,
		red:       red,
		green:     green,
		blue:      blue,
	}
	l.colors.Store(&Sequence{})
	l.toggleFn = l.toggle
	l.alternateFn = l.alternate
	l.illuminate(led.None)

	return l, nil
}

// Pins returns the red, green and blue pins.
func (l *RGBLED) Pins() (red, green, blue pins.Pin) {
	return l.red, l.green, l.blue
}

// SetColor replaces the color sequence and rewinds it to the first color.
// Colors after the sixth are ignored and led.None ends the sequence early.
//
// SetColor does not touch the state. A running blink or alternate pattern
// picks up the new colors on its next tick without restarting its period.
func (l *RGBLED) SetColor(first led.RGBColor, rest ...led.RGBColor) {
	colors := make([]led.RGBColor, 0, 1+len(rest))
	colors = append(colors, first)
	colors = append(colors, rest...)

	seq := NewSequence(colors...)
	l.colors.Store(&seq)
	l.index.Store(0)
}

// GetColor returns the configured color sequence.
func (l *RGBLED) GetColor() Sequence {
	return *l.colors.Load()
}

// Index returns the position of the color shown by Alternate.
func (l *RGBLED) Index() int {
	n := l.colors.Load().Len()
	if n == 0 {
		return 0
	}
	// A SetColor racing a tick can leave a stale index behind; every reader
	// wraps it the same way.
	return int(l.index.Load()) % n
}

// SetState sets the target state with DefaultInterval.
func (l *RGBLED) SetState(state LEDState) {
	l.SetStateInterval(state, DefaultInterval)
}

// SetStateInterval sets the target state. Any running pattern is cancelled
// first, so the new pattern always starts a fresh period. Unknown states are
// recorded but have no effect.
func (l *RGBLED) SetStateInterval(state LEDState, interval time.Duration) {
	l.disarm()
	l.state = state

	switch state {
	case On, BlinkOn:
		l.illuminated.Store(true)
		l.illuminate(l.colors.Load().At(0))
		if state == BlinkOn {
			l.arm(l.toggleFn, interval)
		}

	case Off, BlinkOff:
		l.illuminated.Store(false)
		l.illuminate(led.None)
		if state == BlinkOff {
			l.arm(l.toggleFn, interval)
		}

	case Alternate:
		l.illuminate(l.colors.Load().At(int(l.index.Load())))
		l.arm(l.alternateFn, interval)
	}
}

// illuminate writes all three channels. A channel is on if its component is
// nonzero.
func (l *RGBLED) illuminate(c led.RGBColor) {
	r, g, b := c.Channels()
	_ = l.drv.Write(l.red, l.typ.level(r))
	_ = l.drv.Write(l.green, l.typ.level(g))
	_ = l.drv.Write(l.blue, l.typ.level(b))
}

// toggle runs on every timer tick while blinking.
func (l *RGBLED) toggle() {
	on := !l.illuminated.Load()
	l.illuminated.Store(on)
	if on {
		l.illuminate(l.colors.Load().At(0))
	} else {
		l.illuminate(led.None)
	}
}

// alternate runs on every timer tick in the Alternate state.
func (l *RGBLED) alternate() {
	seq := l.colors.Load()
	if seq.Len() == 0 {
		l.index.Store(0)
		l.illuminate(led.None)
		return
	}

	i := (l.index.Load()%uint32(seq.Len()) + 1) % uint32(seq.Len())
	l.index.Store(i)
	l.illuminate(seq.At(int(i)))
}
