package sched

import (
	"time"

	"github.com/sirupsen/logrus"
)

// maxDeliveries bounds a single drain so a zero-period loop cannot hang a test.
const maxDeliveries = 100000

// Virtual runs the queue on a manually advanced clock. Deliveries happen only
// inside RunUntilIdle and Advance, on the caller's goroutine.
type Virtual struct {
	*Queue

	now     time.Time
	handler Handler
	logger  *logrus.Logger
}

// NewVirtual creates a virtual-time runner starting at the Unix epoch.
func NewVirtual(logger *logrus.Logger) *Virtual {
	v := &Virtual{
		now:    time.Unix(0, 0).UTC(),
		logger: logger,
	}
	v.Queue = NewQueue(func() time.Time { return v.now }, logger)
	return v
}

// SetHandler installs the consumer of delivered messages.
func (v *Virtual) SetHandler(h Handler) {
	v.handler = h
}

// Now returns the virtual clock.
func (v *Virtual) Now() time.Time {
	return v.now
}

// Elapsed returns virtual time since the runner was created.
func (v *Virtual) Elapsed() time.Duration {
	return v.now.Sub(time.Unix(0, 0))
}

// RunUntilIdle delivers every message due now, including ones queued by the
// handlers it runs. It returns the number of deliveries.
func (v *Virtual) RunUntilIdle() int {
	return v.drain(v.now)
}

// Advance moves the clock forward by d, delivering each message at its due
// time in order. It returns the number of deliveries.
func (v *Virtual) Advance(d time.Duration) int {
	return v.drain(v.now.Add(d))
}

func (v *Virtual) drain(until time.Time) int {
	delivered := 0
	for delivered < maxDeliveries {
		msg, ok := v.pop(until)
		if !ok {
			break
		}
		if msg.Due.After(v.now) {
			v.now = msg.Due
		}
		delivered++
		if v.handler == nil {
			v.logger.WithField("event", msg.ID).Warn("No handler installed, message dropped")
			continue
		}
		v.deliver(msg, v.handler)
	}
	if delivered == maxDeliveries {
		v.logger.WithField("limit", maxDeliveries).Error("Delivery limit reached, queue did not go idle")
	}
	if until.After(v.now) {
		v.now = until
	}
	return delivered
}
