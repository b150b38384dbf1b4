package ledmanager

import (
	"encoding"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"libdb.so/ledmanager/internal/led"
	"libdb.so/ledmanager/internal/pins"
)

// Config is the configuration for the LED manager daemon.
type Config struct {
	// Backend is the pin backend: sim, periph, chardev or serial.
	Backend string `toml:"backend" yaml:"backend"`
	// Device is the path to the serial device for the serial backend.
	// This is usually /dev/ttyUSB0 or /dev/ttyACM0.
	Device string `toml:"device" yaml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud" yaml:"baud"`
	// Chip is the GPIO character device for the chardev backend.
	Chip string `toml:"chip" yaml:"chip"`
	// Timers is the number of timer channels to hand out. Zero means one per
	// LED.
	Timers int `toml:"timers" yaml:"timers"`
	// Metrics is the listen address for Prometheus metrics. Empty disables
	// the listener.
	Metrics string `toml:"metrics" yaml:"metrics"`
	// LEDs is a list of LED configurations.
	LEDs []LEDConfig `toml:"led" yaml:"led"`
}

// LEDConfig is the configuration for one LED.
type LEDConfig struct {
	// Name identifies the LED in logs, metrics and reloads.
	Name string `toml:"name" yaml:"name"`
	// Pins is one pin for a single-color LED or red, green and blue pins for
	// an RGB LED.
	Pins []int `toml:"pins" yaml:"pins"`
	// Type is the RGB wiring. It defaults to cathode and is ignored for
	// single-color LEDs.
	Type *LEDType `toml:"type,omitempty" yaml:"type,omitempty"`
	// State is the initial state.
	State LEDState `toml:"state" yaml:"state"`
	// Interval is the blink or alternate period. Zero means DefaultInterval.
	Interval Duration `toml:"interval,omitempty" yaml:"interval,omitempty"`
	// Colors is the color sequence of an RGB LED.
	Colors []led.RGBColor `toml:"colors,omitempty" yaml:"colors,omitempty"`
}

// IsRGB returns true if the LED has three pins.
func (c LEDConfig) IsRGB() bool {
	return len(c.Pins) == 3
}

// WiringType returns the configured wiring, defaulting RGB LEDs to Cathode.
func (c LEDConfig) WiringType() LEDType {
	switch {
	case !c.IsRGB():
		return Single
	case c.Type == nil:
		return Cathode
	default:
		return *c.Type
	}
}

// pinList returns the configured pins as pins.Pin values.
func (c LEDConfig) pinList() []pins.Pin {
	ps := make([]pins.Pin, len(c.Pins))
	for i, p := range c.Pins {
		ps[i] = pins.Pin(p)
	}
	return ps
}

// sameWiring returns true if both configurations describe the same hardware.
func (c LEDConfig) sameWiring(other LEDConfig) bool {
	if len(c.Pins) != len(other.Pins) || c.WiringType() != other.WiringType() {
		return false
	}
	for i := range c.Pins {
		if c.Pins[i] != other.Pins[i] {
			return false
		}
	}
	return true
}

// Validate validates the configuration and fills in defaults.
func (c *Config) Validate() error {
	switch c.Backend {
	case "":
		c.Backend = "sim"
	case "sim", "periph", "chardev":
	case "serial":
		if c.Device == "" {
			return errors.New("device is required for the serial backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.Baud <= 0 {
		c.Baud = 115200
	}
	if c.Timers < 0 {
		return errors.New("timers must be >= 0")
	}
	if len(c.LEDs) == 0 {
		return errors.New("no LEDs configured")
	}

	names := make(map[string]int, len(c.LEDs))
	owners := make(map[int]string)

	for i := range c.LEDs {
		l := &c.LEDs[i]
		field := fmt.Sprintf("led[%d]", i)

		if l.Name == "" {
			l.Name = fmt.Sprintf("led%d", i)
		}
		if j, ok := names[l.Name]; ok {
			return fmt.Errorf("%s.name %q is already used by led[%d]", field, l.Name, j)
		}
		names[l.Name] = i

		if len(l.Pins) != 1 && len(l.Pins) != 3 {
			return fmt.Errorf("%s.pins must have 1 or 3 entries", field)
		}

		// Check for pins shared between LEDs.
		for _, p := range l.Pins {
			if p < 0 || p > 255 {
				return fmt.Errorf("%s.pins: pin %d out of range", field, p)
			}
			if owner, ok := owners[p]; ok {
				return fmt.Errorf("%s.pins: pin %d is already used by %q", field, p, owner)
			}
			owners[p] = l.Name
		}

		if l.Interval < 0 {
			return fmt.Errorf("%s.interval must be >= 0", field)
		}

		if !l.IsRGB() {
			if len(l.Colors) > 0 {
				return fmt.Errorf("%s.colors requires an RGB LED", field)
			}
			if l.State == Alternate {
				return fmt.Errorf("%s.state alternate requires an RGB LED", field)
			}
			continue
		}

		if len(l.Colors) > MaxColors {
			return fmt.Errorf("%s.colors must have at most %d entries", field, MaxColors)
		}
		if l.State != Off && len(l.Colors) == 0 {
			return fmt.Errorf("%s.colors is required when state is %s", field, l.State)
		}
	}

	return nil
}

// NumTimers returns the size of the timer pool.
func (c *Config) NumTimers() int {
	if c.Timers == 0 {
		return len(c.LEDs)
	}
	return c.Timers
}

func (c *Config) backend() pins.BackendConfig {
	return pins.BackendConfig{
		Name:   c.Backend,
		Device: c.Device,
		Baud:   c.Baud,
		Chip:   c.Chip,
	}
}

// Duration is a duration that can be parsed from TOML or YAML text.
type Duration time.Duration

var (
	_ encoding.TextUnmarshaler = (*Duration)(nil)
	_ encoding.TextMarshaler   = (*Duration)(nil)
)

func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a TOML configuration from a reader.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// ParseYAMLConfig parses a YAML configuration from a reader.
func ParseYAMLConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := yaml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfig reads a configuration file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = ParseYAMLConfig(f)
	default:
		cfg, err = ParseConfig(f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return cfg, nil
}
