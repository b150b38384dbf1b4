// Package led contains the color model shared by the LED drivers.
package led

import (
	"encoding"
	"encoding/hex"
	"fmt"
	"strings"
)

// RGBColor is a color with one byte per channel, in R, G, B order.
type RGBColor [3]uint8

var (
	_ encoding.TextUnmarshaler = (*RGBColor)(nil)
	_ encoding.TextMarshaler   = RGBColor{}
)

// The fixed palette. None means "unset" and drives every channel off.
var (
	None    = RGBColor{0x00, 0x00, 0x00}
	Red     = RGBColor{0xFF, 0x00, 0x00}
	Green   = RGBColor{0x00, 0xFF, 0x00}
	Blue    = RGBColor{0x00, 0x00, 0xFF}
	Magenta = RGBColor{0xFF, 0x00, 0xF0}
	Yellow  = RGBColor{0xFF, 0xFF, 0x00}
	Cyan    = RGBColor{0x00, 0xFF, 0xFF}
	White   = RGBColor{0xFF, 0xFF, 0xFF}
	Orange  = RGBColor{0xFF, 0xA5, 0x00}
	Purple  = RGBColor{0x80, 0x00, 0x80}
)

var palette = []struct {
	name  string
	color RGBColor
}{
	{"none", None},
	{"red", Red},
	{"green", Green},
	{"blue", Blue},
	{"magenta", Magenta},
	{"yellow", Yellow},
	{"cyan", Cyan},
	{"white", White},
	{"orange", Orange},
	{"purple", Purple},
}

// Packed returns a color from its 0xRRGGBB representation.
func Packed(v uint32) RGBColor {
	return RGBColor{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

// Packed returns the color as 0xRRGGBB.
func (c RGBColor) Packed() uint32 {
	return uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
}

// IsNone returns true if every channel is zero.
func (c RGBColor) IsNone() bool {
	return c == None
}

// Channels reports which channels are lit. Any nonzero component counts as
// on; there is no dimming.
func (c RGBColor) Channels() (r, g, b bool) {
	return c[0] != 0, c[1] != 0, c[2] != 0
}

// String returns the palette name of the color, or #rrggbb if it has none.
func (c RGBColor) String() string {
	for _, p := range palette {
		if p.color == c {
			return p.name
		}
	}
	return "#" + hex.EncodeToString(c[:])
}

// MarshalText implements encoding.TextMarshaler.
func (c RGBColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts palette
// names (case-insensitive) and hex triples written as #rrggbb, 0xrrggbb or
// rrggbb.
func (c *RGBColor) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses a palette name or a hex triple.
func ParseColor(s string) (RGBColor, error) {
	s = strings.TrimSpace(s)

	for _, p := range palette {
		if strings.EqualFold(p.name, s) {
			return p.color, nil
		}
	}

	h := strings.TrimPrefix(s, "#")
	if len(h) == len(s) {
		h = strings.TrimPrefix(strings.ToLower(s), "0x")
	}
	if len(h) != 6 {
		return None, fmt.Errorf("invalid color %q", s)
	}

	var c RGBColor
	if _, err := hex.Decode(c[:], []byte(h)); err != nil {
		return None, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}
