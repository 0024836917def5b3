// Package durlog measures wall-clock durations and reports them through a
// structured logger, e.g. to time a batch of pool submissions end to end.
package durlog

import (
	"time"

	"github.com/joeycumines/logiface"
)

// Timer measures the wall-clock time since its creation. Instances must be
// initialized using the Start factory. A Timer is not safe for concurrent
// use.
type Timer struct {
	logger  *logiface.Logger[logiface.Event]
	id      string
	start   time.Time
	stopped bool
}

// Start returns a running timer. The logger may be nil, in which case Stop
// only returns the measurement. The typical usage is
//
//	defer durlog.Start(logger, `round`).Stop()
func Start(logger *logiface.Logger[logiface.Event], id string) *Timer {
	return &Timer{
		logger: logger,
		id:     id,
		start:  time.Now(),
	}
}

// Elapsed returns the time since Start, without logging.
func (x *Timer) Elapsed() time.Duration {
	return time.Since(x.start)
}

// Stop returns the time since Start, logging it at info level. Only the
// first call logs; later calls just return the (still growing) elapsed
// time.
func (x *Timer) Stop() time.Duration {
	elapsed := x.Elapsed()
	if !x.stopped {
		x.stopped = true
		x.logger.Info().Str(`id`, x.id).Dur(`duration`, elapsed).Log(`duration measured`)
	}
	return elapsed
}
