package led

import "testing"

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want RGBColor
	}{
		{"red", Red},
		{"ORANGE", Orange},
		{" purple ", Purple},
		{"none", None},
		{"#0a96cc", RGBColor{0x0a, 0x96, 0xcc}},
		{"0xFF00F0", Magenta},
		{"00ffff", Cyan},
	}

	for _, test := range tests {
		got, err := ParseColor(test.in)
		if err != nil {
			t.Fatalf("ParseColor(%q) error: %v", test.in, err)
		}
		if got != test.want {
			t.Fatalf("ParseColor(%q)=%v want %v", test.in, got, test.want)
		}
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, in := range []string{"", "chartreuse", "#12345", "#zzzzzz", "0x1234567"} {
		if _, err := ParseColor(in); err == nil {
			t.Fatalf("ParseColor(%q) expected error", in)
		}
	}
}

func TestPackedMatchesPalette(t *testing.T) {
	tests := []struct {
		packed uint32
		want   RGBColor
	}{
		{0x000000, None},
		{0xFF0000, Red},
		{0x00FF00, Green},
		{0x0000FF, Blue},
		{0xFF00F0, Magenta},
		{0xFFFF00, Yellow},
		{0x00FFFF, Cyan},
		{0xFFFFFF, White},
		{0xFFA500, Orange},
		{0x800080, Purple},
	}

	for _, test := range tests {
		if got := Packed(test.packed); got != test.want {
			t.Fatalf("Packed(%06x)=%v want %v", test.packed, got, test.want)
		}
		if got := test.want.Packed(); got != test.packed {
			t.Fatalf("%v.Packed()=%06x want %06x", test.want, got, test.packed)
		}
	}
}

func TestChannels(t *testing.T) {
	r, g, b := Orange.Channels()
	if !r || !g || b {
		t.Fatalf("orange channels=%v,%v,%v want true,true,false", r, g, b)
	}

	r, g, b = Purple.Channels()
	if !r || g || !b {
		t.Fatalf("purple channels=%v,%v,%v want true,false,true", r, g, b)
	}

	r, g, b = None.Channels()
	if r || g || b {
		t.Fatalf("none channels=%v,%v,%v want all false", r, g, b)
	}
}

func TestStringRoundTrip(t *testing.T) {
	c := RGBColor{0x12, 0x34, 0x56}
	if s := c.String(); s != "#123456" {
		t.Fatalf("String()=%q want #123456", s)
	}

	var back RGBColor
	if err := back.UnmarshalText([]byte(c.String())); err != nil {
		t.Fatalf("UnmarshalText error: %v", err)
	}
	if back != c {
		t.Fatalf("round trip=%v want %v", back, c)
	}

	if s := Yellow.String(); s != "yellow" {
		t.Fatalf("String()=%q want yellow", s)
	}
}
