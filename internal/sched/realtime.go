package sched

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/groutine"
)

// Realtime runs the queue against the wall clock. Run is the only goroutine
// that invokes the handler; Post may be called from anywhere.
type Realtime struct {
	*Queue

	handler Handler
	owner   groutine.Owner
	logger  *logrus.Logger
}

// NewRealtime creates a wall-clock runner.
func NewRealtime(logger *logrus.Logger) *Realtime {
	return &Realtime{
		Queue:  NewQueue(time.Now, logger),
		logger: logger,
	}
}

// SetHandler installs the consumer of delivered messages. Call before Run.
func (r *Realtime) SetHandler(h Handler) {
	r.handler = h
}

// Post queues an external message for immediate delivery.
func (r *Realtime) Post(id events.ID, payload any) {
	r.Send(id, payload)
}

// OnDispatchGoroutine reports whether the caller is the dispatch goroutine.
func (r *Realtime) OnDispatchGoroutine() bool {
	return r.owner.Owned()
}

// Run delivers messages as they fall due until ctx is cancelled.
func (r *Realtime) Run(ctx context.Context) error {
	r.owner.Claim()
	defer r.owner.Release()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	r.logger.WithField("goroutine", groutine.GetName(ctx)).Debug("Dispatch loop started")

	for {
		for {
			msg, ok := r.pop(time.Now())
			if !ok {
				break
			}
			if r.handler != nil {
				r.deliver(msg, r.handler)
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		wait := time.Hour
		if due, ok := r.NextDue(); ok {
			wait = time.Until(due)
			if wait < 0 {
				wait = 0
			}
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			r.logger.Debug("Dispatch loop stopped")
			return ctx.Err()
		case <-r.Wake():
		case <-timer.C:
		}
	}
}
