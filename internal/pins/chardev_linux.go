//go:build linux

package pins

import (
	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
)

// Chardev drives pins through the Linux GPIO character device. Pin numbers
// are line offsets on the chip, which on a Raspberry Pi gpiochip0 match BCM
// numbering.
type Chardev struct {
	chip *gpiocdev.Chip
	// lines is only written by ConfigureOutput, before any timer runs.
	lines [256]*gpiocdev.Line
}

var _ Driver = (*Chardev)(nil)

// OpenChardev opens the named chip, defaulting to gpiochip0.
func OpenChardev(chip string) (*Chardev, error) {
	if chip == "" {
		chip = "gpiochip0"
	}
	c, err := gpiocdev.NewChip(chip, gpiocdev.WithConsumer("ledmanager"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", chip)
	}
	return &Chardev{chip: c}, nil
}

// ConfigureOutput implements Driver. The line starts low.
func (d *Chardev) ConfigureOutput(p Pin) error {
	if d.lines[p] != nil {
		return nil
	}
	line, err := d.chip.RequestLine(int(p), gpiocdev.AsOutput(0))
	if err != nil {
		return errors.Wrapf(err, "failed to request line %d on %s", p, d.chip.Name)
	}
	d.lines[p] = line
	return nil
}

// Write implements Driver.
func (d *Chardev) Write(p Pin, l gpio.Level) error {
	line := d.lines[p]
	if line == nil {
		return errors.Errorf("chardev: %s is not configured as an output", p)
	}
	v := 0
	if l == gpio.High {
		v = 1
	}
	return line.SetValue(v)
}

// Close releases every requested line and the chip.
func (d *Chardev) Close() error {
	var firstErr error
	for i, line := range d.lines {
		if line == nil {
			continue
		}
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.lines[i] = nil
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.chip = nil
	}
	return firstErr
}
