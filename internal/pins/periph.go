package pins

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Periph drives pins through periph.io's host drivers. Pins are looked up by
// their GPIO<n> name.
type Periph struct {
	// pins is only written by ConfigureOutput, before any timer runs.
	pins [256]gpio.PinOut
}

var _ Driver = (*Periph)(nil)

// OpenPeriph initializes the periph.io host drivers.
func OpenPeriph() (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize periph host")
	}
	return &Periph{}, nil
}

// ConfigureOutput implements Driver.
func (d *Periph) ConfigureOutput(p Pin) error {
	pin := gpioreg.ByName(p.String())
	if pin == nil {
		return errors.Errorf("periph: no pin named %s", p)
	}
	d.pins[p] = pin
	return nil
}

// Write implements Driver.
func (d *Periph) Write(p Pin, l gpio.Level) error {
	pin := d.pins[p]
	if pin == nil {
		return errors.Errorf("periph: %s is not configured as an output", p)
	}
	return pin.Out(l)
}

// Close halts every configured pin.
func (d *Periph) Close() error {
	var firstErr error
	for i, pin := range d.pins {
		if pin == nil {
			continue
		}
		if err := pin.Halt(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "failed to halt %s", Pin(i))
		}
		d.pins[i] = nil
	}
	return firstErr
}
