package systimer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	timerTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledmanager_timer_ticks_total",
		Help: "Timer callbacks run, per LED",
	}, []string{"led"})

	timerArms = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledmanager_timer_arms_total",
		Help: "Times a timer was armed, per LED",
	}, []string{"led"})

	timersAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ledmanager_timers_available",
		Help: "Unclaimed timer channels in the pool",
	})
)

// Instrumented wraps a timer and counts its arms and callbacks.
type Instrumented struct {
	Interface
	pool  *Pool
	ticks prometheus.Counter
	arms  prometheus.Counter
}

var _ Interface = (*Instrumented)(nil)

// Instrument wraps t, labelling its metrics with name. If pool is not nil, its
// free channel count is exported after every Begin.
func Instrument(t Interface, name string, pool *Pool) *Instrumented {
	return &Instrumented{
		Interface: t,
		pool:      pool,
		ticks:     timerTicks.WithLabelValues(name),
		arms:      timerArms.WithLabelValues(name),
	}
}

// Begin implements Interface.
func (i *Instrumented) Begin() bool {
	ok := i.Interface.Begin()
	if i.pool != nil {
		timersAvailable.Set(float64(i.pool.Available()))
	}
	return ok
}

// AttachInterrupt implements Interface.
func (i *Instrumented) AttachInterrupt(f func()) {
	ticks := i.ticks
	i.Interface.AttachInterrupt(func() {
		ticks.Inc()
		f()
	})
}

// Arm implements Interface.
func (i *Instrumented) Arm(repeating bool) {
	i.arms.Inc()
	i.Interface.Arm(repeating)
}
