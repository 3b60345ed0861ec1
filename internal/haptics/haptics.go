// Package haptics delivers fire-and-forget vibration pulses.
package haptics

import (
	"context"

	"github.com/vytor/sayilar/internal/logger"
	"github.com/vytor/sayilar/internal/worker"
)

// Kind is the pulse pattern.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Impact  Kind = "impact"
)

// Feedback triggers pulses. Implementations must never block the caller.
type Feedback interface {
	Pulse(kind Kind)
}

// Driver talks to the device motor.
type Driver interface {
	Fire(ctx context.Context, kind Kind) error
}

// LogDriver logs pulses instead of vibrating.
type LogDriver struct{}

func (LogDriver) Fire(ctx context.Context, kind Kind) error {
	logger.FromContext(ctx).Info("haptic pulse: %s", kind)
	return nil
}

// Dispatcher hands pulses to a worker pool. Pulses are dropped when the queue
// is full; a late vibration is worse than none.
type Dispatcher struct {
	pool   *worker.Pool
	driver Driver
	log    *logger.Logger
}

// NewDispatcher returns a Feedback backed by pool.
func NewDispatcher(pool *worker.Pool, driver Driver) *Dispatcher {
	return &Dispatcher{
		pool:   pool,
		driver: driver,
		log:    logger.Default().WithPrefix("haptics"),
	}
}

func (d *Dispatcher) Pulse(kind Kind) {
	if !d.pool.TrySubmit(&pulseJob{driver: d.driver, kind: kind}) {
		d.log.Debug("pulse dropped: %s", kind)
	}
}

type pulseJob struct {
	driver Driver
	kind   Kind
}

func (j *pulseJob) Name() string { return "haptic_" + string(j.kind) }

func (j *pulseJob) Run(ctx context.Context) error {
	return j.driver.Fire(ctx, j.kind)
}
