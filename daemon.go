package ledmanager

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"libdb.so/ledmanager/internal/pins"
	"libdb.so/ledmanager/internal/systimer"
)

// openPins is swapped in tests.
var openPins = pins.Open

// Daemon drives the configured LEDs until its context is canceled.
type Daemon struct {
	cfg    *Config
	logger *slog.Logger

	mu    sync.Mutex
	drv   pins.Driver
	pool  *systimer.Pool
	leds  map[string]*managedLED
	order []string
}

type managedLED struct {
	cfg   LEDConfig
	led   LED
	rgb   *RGBLED // nil for single-color LEDs
	timer *systimer.Timer
	timed bool
}

// runner is implemented by backends that need a goroutine, such as the
// serial link.
type runner interface {
	Run(ctx context.Context) error
}

// NewDaemon creates a new LED manager daemon.
func NewDaemon(cfg *Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &Daemon{
		cfg:    cfg,
		logger: logger,
		leds:   make(map[string]*managedLED),
	}, nil
}

// Run opens the pin backend, applies the configured states and blocks until
// the given context is canceled. Every LED is turned off before Run returns.
func (d *Daemon) Run(ctx context.Context) error {
	drv, closer, err := openPins(d.cfg.backend(), d.logger)
	if err != nil {
		return errors.Wrap(err, "failed to open pin backend")
	}
	if closer != nil {
		defer closer.Close()
	}

	// The backend outlives ctx so that the final Off writes still reach it.
	backendCtx, cancelBackend := context.WithCancel(context.Background())
	defer cancelBackend()

	errg, ctx := errgroup.WithContext(ctx)

	if r, ok := drv.(runner); ok {
		errg.Go(func() error {
			if err := r.Run(backendCtx); err != nil && backendCtx.Err() == nil {
				return errors.Wrap(err, "pin backend failed")
			}
			return nil
		})
	}

	if d.cfg.Metrics != "" {
		errg.Go(func() error {
			return serveMetrics(ctx, d.cfg.Metrics, d.logger)
		})
	}

	errg.Go(func() error {
		defer cancelBackend()

		if err := d.start(drv); err != nil {
			d.stop()
			return err
		}

		<-ctx.Done()
		d.logger.Debug("turning off LEDs")
		d.stop()
		return ctx.Err()
	})

	return errg.Wait()
}

// LED returns the named LED, or nil if the daemon has not started it.
func (d *Daemon) LED(name string) LED {
	d.mu.Lock()
	defer d.mu.Unlock()

	if m, ok := d.leds[name]; ok {
		return m.led
	}
	return nil
}

// Apply applies a new configuration to the running LEDs. States, intervals
// and colors change immediately; LEDs whose wiring changed, and added or
// removed LEDs, are reported and left alone until a restart.
func (d *Daemon) Apply(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.drv == nil {
		d.cfg = cfg
		return nil
	}

	if cfg.backend() != d.cfg.backend() || cfg.NumTimers() != d.cfg.NumTimers() {
		d.logger.Warn("backend or timer changes need a restart")
	}

	seen := make(map[string]bool, len(cfg.LEDs))
	for _, lcfg := range cfg.LEDs {
		seen[lcfg.Name] = true

		m, ok := d.leds[lcfg.Name]
		if !ok {
			d.logger.Warn("new LED needs a restart", "led", lcfg.Name)
			continue
		}
		if !m.cfg.sameWiring(lcfg) {
			d.logger.Warn("LED wiring changed, restart to apply", "led", lcfg.Name)
			continue
		}

		d.apply(m, lcfg)
	}

	for _, name := range d.order {
		if !seen[name] {
			d.logger.Warn("removed LED keeps running until restart", "led", name)
		}
	}

	return nil
}

func (d *Daemon) start(drv pins.Driver) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.drv = drv
	d.pool = systimer.NewPool(d.cfg.NumTimers())

	for _, lcfg := range d.cfg.LEDs {
		m, err := d.build(lcfg)
		if err != nil {
			return errors.Wrapf(err, "failed to set up LED %q", lcfg.Name)
		}
		d.leds[lcfg.Name] = m
		d.order = append(d.order, lcfg.Name)
		d.apply(m, lcfg)
	}

	d.logger.Info(
		"LEDs started",
		"backend", d.cfg.Backend,
		"leds", len(d.leds),
		"timers_free", d.pool.Available())
	return nil
}

func (d *Daemon) build(lcfg LEDConfig) (*managedLED, error) {
	timer := d.pool.NewTimer()
	instrumented := systimer.Instrument(timer, lcfg.Name, d.pool)

	m := &managedLED{cfg: lcfg, timer: timer}

	ps := lcfg.pinList()
	if lcfg.IsRGB() {
		rgb, err := NewRGBLED(d.drv, ps[0], ps[1], ps[2], lcfg.WiringType(), instrumented)
		if err != nil {
			return nil, err
		}
		m.led = rgb
		m.rgb = rgb
	} else {
		single, err := NewSingleLED(d.drv, ps[0], instrumented)
		if err != nil {
			return nil, err
		}
		m.led = single
	}

	m.timed = m.led.Begin()
	if !m.timed {
		d.logger.Warn(
			"no timer available, periodic states fall back to steady",
			"led", lcfg.Name)
	}

	return m, nil
}

func (d *Daemon) apply(m *managedLED, lcfg LEDConfig) {
	m.cfg = lcfg

	if m.rgb != nil && len(lcfg.Colors) > 0 {
		m.rgb.SetColor(lcfg.Colors[0], lcfg.Colors[1:]...)
	}

	state := lcfg.State
	if state.Periodic() && !m.timed {
		state = state.Steady()
	}

	m.led.SetStateInterval(state, time.Duration(lcfg.Interval))
	stateChanges.WithLabelValues(lcfg.Name, state.String()).Inc()

	d.logger.Info(
		"LED state set",
		"led", lcfg.Name,
		"state", state,
		"interval", time.Duration(lcfg.Interval),
		"colors", len(lcfg.Colors))
}

func (d *Daemon) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, name := range d.order {
		m := d.leds[name]
		m.led.SetState(Off)
		m.timer.Release()
	}
}
