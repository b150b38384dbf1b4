//go:build !linux

package pins

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
)

// Chardev is unavailable outside Linux.
type Chardev struct{}

// OpenChardev always fails outside Linux.
func OpenChardev(chip string) (*Chardev, error) {
	return nil, errors.New("chardev: gpio character devices are only supported on linux")
}

func (d *Chardev) ConfigureOutput(p Pin) error {
	return errors.New("chardev: unsupported platform")
}

func (d *Chardev) Write(p Pin, l gpio.Level) error {
	return errors.New("chardev: unsupported platform")
}

func (d *Chardev) Close() error { return nil }
