package ledmanager

import (
	"encoding"
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// DefaultInterval is the blink and alternate period used by SetState.
const DefaultInterval = 500 * time.Millisecond

// LEDType describes how an LED is wired.
type LEDType uint8

const (
	// Anode is a common-anode RGB LED: a channel is on when its pin is low.
	Anode LEDType = iota
	// Cathode is a common-cathode RGB LED: a channel is on when its pin is
	// high.
	Cathode
	// Single is a single-color LED driven high to light.
	Single
)

var (
	_ encoding.TextMarshaler   = Anode
	_ encoding.TextUnmarshaler = (*LEDType)(nil)
)

func (t LEDType) String() string {
	switch t {
	case Anode:
		return "anode"
	case Cathode:
		return "cathode"
	case Single:
		return "single"
	default:
		return fmt.Sprintf("LEDType(%d)", uint8(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t LEDType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *LEDType) UnmarshalText(text []byte) error {
	for _, v := range []LEDType{Anode, Cathode, Single} {
		if strings.EqualFold(string(text), v.String()) {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("unknown LED type %q", text)
}

// level returns the pin level that makes a channel of this type on or off.
func (t LEDType) level(on bool) gpio.Level {
	if t == Anode {
		return gpio.Level(!on)
	}
	return gpio.Level(on)
}

// LEDState is the target state of an LED.
type LEDState uint8

const (
	Off LEDState = iota
	On
	// BlinkOff blinks, starting with the LED off.
	BlinkOff
	// BlinkOn blinks, starting with the LED on.
	BlinkOn
	// Alternate cycles through the configured colors. RGB LEDs only.
	Alternate
)

var (
	_ encoding.TextMarshaler   = Off
	_ encoding.TextUnmarshaler = (*LEDState)(nil)
)

func (s LEDState) String() string {
	switch s {
	case Off:
		return "off"
	case On:
		return "on"
	case BlinkOff:
		return "blink_off"
	case BlinkOn:
		return "blink_on"
	case Alternate:
		return "alternate"
	default:
		return fmt.Sprintf("LEDState(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s LEDState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LEDState) UnmarshalText(text []byte) error {
	for _, v := range []LEDState{Off, On, BlinkOff, BlinkOn, Alternate} {
		if strings.EqualFold(string(text), v.String()) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown LED state %q", text)
}

// Periodic returns true if the state needs a timer.
func (s LEDState) Periodic() bool {
	return s == BlinkOff || s == BlinkOn || s == Alternate
}

// Steady returns the state shown when no timer is available: blinking states
// hold their initial phase and Alternate holds the first color.
func (s LEDState) Steady() LEDState {
	switch s {
	case BlinkOn, Alternate:
		return On
	case BlinkOff:
		return Off
	default:
		return s
	}
}
