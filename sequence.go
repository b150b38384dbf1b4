package ledmanager

import (
	"strings"

	"libdb.so/ledmanager/internal/led"
)

// MaxColors is the most colors an RGB LED can cycle through.
const MaxColors = 6

// Sequence is a bounded, ordered list of colors.
type Sequence struct {
	colors [MaxColors]led.RGBColor
	n      int
}

// NewSequence builds a sequence from colors. The sequence ends at the first
// led.None or after MaxColors entries, whichever comes first.
func NewSequence(colors ...led.RGBColor) Sequence {
	var s Sequence
	for _, c := range colors {
		if c.IsNone() || s.n == MaxColors {
			break
		}
		s.colors[s.n] = c
		s.n++
	}
	return s
}

// Len returns the number of configured colors.
func (s Sequence) Len() int {
	return s.n
}

// At returns the i-th color, wrapping around the configured length. An empty
// sequence always returns led.None.
func (s Sequence) At(i int) led.RGBColor {
	if s.n == 0 || i < 0 {
		return led.None
	}
	return s.colors[i%s.n]
}

// Colors returns a copy of the configured colors.
func (s Sequence) Colors() []led.RGBColor {
	return append([]led.RGBColor(nil), s.colors[:s.n]...)
}

// Slots returns every slot, with unused ones set to led.None.
func (s Sequence) Slots() [MaxColors]led.RGBColor {
	return s.colors
}

func (s Sequence) String() string {
	names := make([]string, s.n)
	for i, c := range s.colors[:s.n] {
		names[i] = c.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}
