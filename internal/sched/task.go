package sched

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/events"
)

// PeriodFunc returns the delay until the next delivery, or false to end the
// task. It is evaluated after each delivery's handler has run, under the
// queue lock, so it must not call back into the queue.
type PeriodFunc func() (time.Duration, bool)

// Every is a PeriodFunc with a fixed interval.
func Every(d time.Duration) PeriodFunc {
	return func() (time.Duration, bool) { return d, true }
}

// Times is a PeriodFunc with a fixed interval that ends after n deliveries (n >= 1).
func Times(d time.Duration, n int) PeriodFunc {
	left := n
	return func() (time.Duration, bool) {
		left--
		return d, left > 0
	}
}

// Task is the cancellation token of a periodic delivery. The task is bound to
// its identifier: CancelAll or SendAfter on the same identifier stops it.
type Task struct {
	q       *Queue
	id      events.ID
	next    PeriodFunc
	final   bool
	stopped bool
}

// StartPeriodic cancels every pending instance of id and starts delivering it
// periodically. The first delivery is one period from now.
func (q *Queue) StartPeriodic(id events.ID, next PeriodFunc) *Task {
	t := &Task{q: q, id: id, next: next}

	q.mu.Lock()
	q.cancelLocked(id)
	delay, ok := next()
	t.final = !ok
	q.tasks[id] = t
	q.push(Message{ID: id, Due: q.now().Add(delay), task: t})
	q.mu.Unlock()
	q.signal()

	q.logger.WithFields(logrus.Fields{
		"event": id,
		"delay": delay,
	}).Debug("Periodic task started")
	return t
}

// Stop ends the task and removes its queued delivery. Stopping twice is a no-op.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	q := t.q
	q.mu.Lock()
	defer q.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if q.tasks[t.id] == t {
		delete(q.tasks, t.id)
	}
	q.removeLocked(func(m Message) bool { return m.task == t })
}

// Active reports whether the task will deliver again.
func (t *Task) Active() bool {
	if t == nil {
		return false
	}
	t.q.mu.Lock()
	defer t.q.mu.Unlock()
	return !t.stopped
}

// ID returns the identifier the task delivers.
func (t *Task) ID() events.ID {
	return t.id
}
