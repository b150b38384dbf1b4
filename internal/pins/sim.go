package pins

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
)

// Sim is an in-memory Driver. It remembers the last level written to every
// pin and is safe to use from timer callbacks.
type Sim struct {
	// OnWrite, if set, is called after every write. It must be set before
	// the driver is handed to an LED.
	OnWrite func(Pin, gpio.Level)

	levels     [256]atomic.Bool
	configured [256]atomic.Bool
	writes     [256]atomic.Uint64
}

var _ Driver = (*Sim)(nil)

// NewSim creates a simulated driver with every pin low and unconfigured.
func NewSim() *Sim {
	return &Sim{}
}

// ConfigureOutput implements Driver.
func (s *Sim) ConfigureOutput(p Pin) error {
	s.configured[p].Store(true)
	return nil
}

// Write implements Driver. Writing an unconfigured pin is an error, as it
// would be on real hardware.
func (s *Sim) Write(p Pin, l gpio.Level) error {
	if !s.configured[p].Load() {
		return errors.Errorf("%s is not configured as an output", p)
	}
	s.levels[p].Store(bool(l))
	s.writes[p].Add(1)
	if s.OnWrite != nil {
		s.OnWrite(p, l)
	}
	return nil
}

// Level returns the last level written to p.
func (s *Sim) Level(p Pin) gpio.Level {
	return gpio.Level(s.levels[p].Load())
}

// Configured returns true if p was configured as an output.
func (s *Sim) Configured(p Pin) bool {
	return s.configured[p].Load()
}

// Writes returns how many times p was written.
func (s *Sim) Writes(p Pin) uint64 {
	return s.writes[p].Load()
}
