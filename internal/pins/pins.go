// Package pins provides digital output backends for LEDs.
package pins

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
)

// Pin is a digital output pin number as understood by a Driver.
type Pin uint8

// String returns the pin as GPIO<n>.
func (p Pin) String() string {
	return fmt.Sprintf("GPIO%d", uint8(p))
}

// Driver configures and drives digital output pins.
type Driver interface {
	// ConfigureOutput configures the pin as a digital output.
	ConfigureOutput(p Pin) error
	// Write drives the pin to the given level. It is called from timer
	// callbacks, so it must not block or allocate.
	Write(p Pin, l gpio.Level) error
}

// BackendConfig selects and configures a Driver.
type BackendConfig struct {
	// Name is one of "sim", "periph", "chardev" or "serial".
	Name string
	// Device is the serial device path for the serial backend.
	Device string
	// Baud is the baud rate for the serial backend.
	Baud int
	// Chip is the GPIO character device for the chardev backend.
	Chip string
}

// Open opens the backend named in cfg. The returned closer releases the
// backend and may be nil.
func Open(cfg BackendConfig, logger *slog.Logger) (Driver, io.Closer, error) {
	switch cfg.Name {
	case "", "sim":
		sim := NewSim()
		sim.OnWrite = func(p Pin, l gpio.Level) {
			logger.Debug("pin write", "pin", p, "level", l)
		}
		return sim, nil, nil

	case "periph":
		drv, err := OpenPeriph()
		if err != nil {
			return nil, nil, err
		}
		return drv, drv, nil

	case "chardev":
		drv, err := OpenChardev(cfg.Chip)
		if err != nil {
			return nil, nil, err
		}
		return drv, drv, nil

	case "serial":
		drv, err := OpenSerial(cfg.Device, cfg.Baud, logger)
		if err != nil {
			return nil, nil, err
		}
		return drv, drv, nil

	default:
		return nil, nil, errors.Errorf("unknown pin backend %q", cfg.Name)
	}
}
