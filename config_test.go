package ledmanager

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"libdb.so/ledmanager/internal/led"
)

const testTOML = `
backend = "sim"
timers = 1

[[led]]
name = "status"
pins = [25, 26, 27]
type = "anode"
state = "alternate"
interval = "300ms"
colors = ["red", "#00ff00", "blue"]

[[led]]
name = "power"
pins = [2]
state = "blink_on"
`

const testYAML = `
backend: sim
led:
  - name: status
    pins: [25, 26, 27]
    state: on
    colors: [magenta, "#ffa500"]
  - pins: [2]
    state: BLINK_OFF
    interval: 1s
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_TOML(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "ledmanager.toml", testTOML))
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}

	if len(cfg.LEDs) != 2 {
		t.Fatalf("leds=%d want 2", len(cfg.LEDs))
	}

	status := cfg.LEDs[0]
	if !status.IsRGB() || status.WiringType() != Anode {
		t.Fatalf("status rgb=%v type=%v want true anode", status.IsRGB(), status.WiringType())
	}
	if status.State != Alternate || time.Duration(status.Interval) != 300*time.Millisecond {
		t.Fatalf("status state=%v interval=%v", status.State, time.Duration(status.Interval))
	}
	wantColors := []led.RGBColor{led.Red, led.Green, led.Blue}
	if len(status.Colors) != len(wantColors) {
		t.Fatalf("colors=%v want %v", status.Colors, wantColors)
	}
	for i := range wantColors {
		if status.Colors[i] != wantColors[i] {
			t.Fatalf("colors=%v want %v", status.Colors, wantColors)
		}
	}

	power := cfg.LEDs[1]
	if power.IsRGB() || power.WiringType() != Single || power.State != BlinkOn {
		t.Fatalf("power rgb=%v type=%v state=%v", power.IsRGB(), power.WiringType(), power.State)
	}
	if cfg.NumTimers() != 1 {
		t.Fatalf("NumTimers=%d want 1", cfg.NumTimers())
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "ledmanager.yaml", testYAML))
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}

	if cfg.LEDs[0].WiringType() != Cathode {
		t.Fatalf("default wiring=%v want cathode", cfg.LEDs[0].WiringType())
	}
	if cfg.LEDs[0].Colors[1] != led.Orange {
		t.Fatalf("colors[1]=%v want orange", cfg.LEDs[0].Colors[1])
	}
	if cfg.LEDs[1].Name != "led1" {
		t.Fatalf("default name=%q want led1", cfg.LEDs[1].Name)
	}
	if cfg.LEDs[1].State != BlinkOff || time.Duration(cfg.LEDs[1].Interval) != time.Second {
		t.Fatalf("led1 state=%v interval=%v", cfg.LEDs[1].State, time.Duration(cfg.LEDs[1].Interval))
	}
	if cfg.NumTimers() != 2 {
		t.Fatalf("NumTimers=%d want one per LED", cfg.NumTimers())
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "bad.toml", `[[led]]
state = "strobe"`)); err == nil {
		t.Fatalf("expected error for unknown state")
	}
}

func TestConfigValidate_Defaults(t *testing.T) {
	cfg := &Config{LEDs: []LEDConfig{{Pins: []int{4}}}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if cfg.Backend != "sim" || cfg.Baud != 115200 {
		t.Fatalf("backend=%q baud=%d want sim 115200", cfg.Backend, cfg.Baud)
	}
	if cfg.LEDs[0].Name != "led0" {
		t.Fatalf("name=%q want led0", cfg.LEDs[0].Name)
	}
}

func TestConfigValidate_Errors(t *testing.T) {
	rgb := func(state LEDState, colors ...led.RGBColor) LEDConfig {
		return LEDConfig{Pins: []int{1, 2, 3}, State: state, Colors: colors}
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no leds", Config{}, "no LEDs configured"},
		{"unknown backend", Config{Backend: "spi", LEDs: []LEDConfig{{Pins: []int{1}}}}, `unknown backend "spi"`},
		{"serial without device", Config{Backend: "serial", LEDs: []LEDConfig{{Pins: []int{1}}}}, "device is required"},
		{"negative timers", Config{Timers: -1, LEDs: []LEDConfig{{Pins: []int{1}}}}, "timers must be >= 0"},
		{"two pins", Config{LEDs: []LEDConfig{{Pins: []int{1, 2}}}}, "led[0].pins must have 1 or 3 entries"},
		{"pin range", Config{LEDs: []LEDConfig{{Pins: []int{256}}}}, "out of range"},
		{"shared pin", Config{LEDs: []LEDConfig{{Name: "a", Pins: []int{1}}, rgb(Off)}}, `pin 1 is already used by "a"`},
		{"duplicate name", Config{LEDs: []LEDConfig{{Name: "a", Pins: []int{1}}, {Name: "a", Pins: []int{2}}}}, `led[1].name "a" is already used by led[0]`},
		{"negative interval", Config{LEDs: []LEDConfig{{Pins: []int{1}, Interval: -1}}}, "led[0].interval must be >= 0"},
		{"single alternate", Config{LEDs: []LEDConfig{{Pins: []int{1}, State: Alternate}}}, "alternate requires an RGB LED"},
		{"single colors", Config{LEDs: []LEDConfig{{Pins: []int{1}, Colors: []led.RGBColor{led.Red}}}}, "colors requires an RGB LED"},
		{"too many colors", Config{LEDs: []LEDConfig{rgb(On, led.Red, led.Red, led.Red, led.Red, led.Red, led.Red, led.Red)}}, "at most 6 entries"},
		{"rgb without colors", Config{LEDs: []LEDConfig{rgb(BlinkOn)}}, "colors is required when state is blink_on"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", test.want)
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Fatalf("err=%q want substring %q", err, test.want)
			}
		})
	}
}

func TestLEDConfig_SameWiring(t *testing.T) {
	anode := Anode
	a := LEDConfig{Pins: []int{1, 2, 3}}
	b := LEDConfig{Pins: []int{1, 2, 3}, State: On}
	c := LEDConfig{Pins: []int{1, 2, 3}, Type: &anode}
	d := LEDConfig{Pins: []int{3, 2, 1}}

	if !a.sameWiring(b) {
		t.Fatalf("state change must not count as rewiring")
	}
	if a.sameWiring(c) || a.sameWiring(d) {
		t.Fatalf("type or pin order change must count as rewiring")
	}
}
