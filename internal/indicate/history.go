package indicate

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hedzr/go-ringbuf/v2/mpmc"
	"github.com/srg/bsink/internal/events"
)

// Kind names an indication sink.
type Kind string

const (
	KindLED  Kind = "led"
	KindTone Kind = "tone"
	KindAT   Kind = "at"
)

// Record is one rendered indication.
type Record struct {
	At     time.Time
	Kind   Kind
	Event  events.ID
	Detail string
}

func (r Record) String() string {
	return fmt.Sprintf("%-4s %s %s", r.Kind, r.Event, r.Detail)
}

// DefaultHistorySize bounds the indication history.
const DefaultHistorySize = 256

// History keeps the most recent rendered indications. When full, the oldest
// records are overwritten. Safe for a producer and a reader on different
// goroutines.
type History struct {
	buffer      mpmc.RichOverlappedRingBuffer[Record]
	overwritten int64
}

// NewHistory creates a history holding up to size records.
func NewHistory(size uint32) *History {
	if size == 0 {
		size = DefaultHistorySize
	}
	return &History{buffer: mpmc.NewOverlappedRingBuffer[Record](size)}
}

// Add appends a record.
func (h *History) Add(r Record) {
	overwrites, err := h.buffer.EnqueueM(r)
	if err == nil && overwrites > 0 {
		atomic.AddInt64(&h.overwritten, int64(overwrites))
	}
}

// Drain removes and returns the buffered records, oldest first.
func (h *History) Drain() []Record {
	var out []Record
	for !h.buffer.IsEmpty() {
		r, err := h.buffer.Dequeue()
		if err != nil {
			break
		}
		out = append(out, r)
	}
	return out
}

// Overwritten counts records lost to overflow.
func (h *History) Overwritten() int64 {
	return atomic.LoadInt64(&h.overwritten)
}
