// Package sched is the message queue of the sink task. Every inbound message,
// immediate or deferred, passes through one Queue and is handed to a single
// Handler, one message at a time.
//
// Deferred messages follow the cancel-then-send discipline: SendAfter removes
// every queued instance of the identifier before queueing the new one, under
// one lock, so at most one instance is ever pending.
package sched

import (
	"container/heap"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/events"
)

// Message is a queued delivery.
type Message struct {
	ID      events.ID
	Payload any
	Due     time.Time

	seq  uint64
	task *Task
}

// Handler consumes delivered messages. It runs to completion before the next
// message is dequeued.
type Handler func(msg Message)

// Scheduler is the capability handed to the core: immediate sends plus the
// cancel-then-send primitives for deferred messages.
type Scheduler interface {
	Send(id events.ID, payload any)
	SendAfter(id events.ID, delay time.Duration, payload any)
	CancelAll(id events.ID) int
	Pending(id events.ID) int
	StartPeriodic(id events.ID, next PeriodFunc) *Task
}

// Queue orders messages by due time, then by arrival.
type Queue struct {
	mu     sync.Mutex
	items  msgHeap
	seq    uint64
	now    func() time.Time
	tasks  map[events.ID]*Task
	wake   chan struct{}
	logger *logrus.Logger
}

// NewQueue creates a queue reading time from now.
func NewQueue(now func() time.Time, logger *logrus.Logger) *Queue {
	return &Queue{
		now:    now,
		tasks:  make(map[events.ID]*Task),
		wake:   make(chan struct{}, 1),
		logger: logger,
	}
}

// Send queues id for delivery after everything already due.
func (q *Queue) Send(id events.ID, payload any) {
	q.mu.Lock()
	q.push(Message{ID: id, Payload: payload, Due: q.now()})
	q.mu.Unlock()
	q.signal()
}

// SendAfter cancels every pending instance of id, then queues exactly one
// new instance delay from now.
func (q *Queue) SendAfter(id events.ID, delay time.Duration, payload any) {
	q.mu.Lock()
	n := q.cancelLocked(id)
	q.push(Message{ID: id, Payload: payload, Due: q.now().Add(delay)})
	q.mu.Unlock()
	q.signal()

	q.logger.WithFields(logrus.Fields{
		"event":     id,
		"delay":     delay,
		"cancelled": n,
	}).Debug("Deferred message scheduled")
}

// CancelAll removes every pending instance of id and stops a periodic task
// running under it. It returns the number of removed messages.
func (q *Queue) CancelAll(id events.ID) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancelLocked(id)
}

// Pending counts queued instances of id.
func (q *Queue) Pending(id events.ID) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, m := range q.items {
		if m.ID == id {
			n++
		}
	}
	return n
}

// Len is the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// NextDue returns the due time of the earliest queued message.
func (q *Queue) NextDue() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].Due, true
}

// Wake is signalled whenever a message is queued.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// pop removes the earliest message due at or before t.
func (q *Queue) pop(t time.Time) (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 || q.items[0].Due.After(t) {
		return Message{}, false
	}
	return heap.Pop(&q.items).(Message), true
}

// deliver hands msg to h and re-arms its periodic task afterwards, so the
// period function sees the state the handler left behind.
func (q *Queue) deliver(msg Message, h Handler) {
	h(msg)

	t := msg.task
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if t.stopped || q.tasks[t.id] != t {
		return
	}
	if t.final {
		t.stopped = true
		delete(q.tasks, t.id)
		return
	}
	delay, ok := t.next()
	t.final = !ok
	q.push(Message{ID: t.id, Payload: msg.Payload, Due: msg.Due.Add(delay), task: t})
}

func (q *Queue) push(m Message) {
	q.seq++
	m.seq = q.seq
	heap.Push(&q.items, m)
}

func (q *Queue) cancelLocked(id events.ID) int {
	if t, ok := q.tasks[id]; ok {
		t.stopped = true
		delete(q.tasks, id)
	}
	return q.removeLocked(func(m Message) bool { return m.ID == id })
}

func (q *Queue) removeLocked(match func(Message) bool) int {
	kept := q.items[:0]
	removed := 0
	for _, m := range q.items {
		if match(m) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	q.items = kept
	if removed > 0 {
		heap.Init(&q.items)
	}
	return removed
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

type msgHeap []Message

func (h msgHeap) Len() int { return len(h) }
func (h msgHeap) Less(i, j int) bool {
	if h[i].Due.Equal(h[j].Due) {
		return h[i].seq < h[j].seq
	}
	return h[i].Due.Before(h[j].Due)
}
func (h msgHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *msgHeap) Push(x any) { *h = append(*h, x.(Message)) }
func (h *msgHeap) Pop() any {
	old := *h
	n := len(old)
	m := old[n-1]
	*h = old[:n-1]
	return m
}
