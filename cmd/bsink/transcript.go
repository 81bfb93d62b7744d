package main

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/indicate"
	"github.com/srg/bsink/internal/stack/sim"
)

// transcript prints what the sink does, one timestamped line per state
// change, indication and (optionally) collaborator call.
type transcript struct {
	mu      sync.Mutex
	w       io.Writer
	epoch   time.Time
	now     func() time.Time
	journal *sim.Journal // nil hides collaborator calls
	seen    int

	state atomic.Int32

	stateColor *color.Color
	kindColors map[indicate.Kind]*color.Color
	callColor  *color.Color
}

func newTranscript(w io.Writer, now func() time.Time, colors bool) *transcript {
	t := &transcript{
		w:          w,
		now:        now,
		epoch:      now(),
		stateColor: color.New(color.FgYellow, color.Bold),
		callColor:  color.New(color.FgHiBlack),
		kindColors: map[indicate.Kind]*color.Color{
			indicate.KindLED:  color.New(color.FgBlue),
			indicate.KindTone: color.New(color.FgGreen),
			indicate.KindAT:   color.New(color.FgMagenta),
		},
	}
	for _, c := range t.colors() {
		if colors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return t
}

func (t *transcript) colors() []*color.Color {
	out := []*color.Color{t.stateColor, t.callColor}
	for _, c := range t.kindColors {
		out = append(out, c)
	}
	return out
}

// showCalls makes flush print the calls recorded in j since the last flush.
func (t *transcript) showCalls(j *sim.Journal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.journal = j
	t.seen = len(j.Calls())
}

// State returns the last state seen by the observer.
func (t *transcript) State() device.State {
	return device.State(t.state.Load())
}

// observe is the state manager observer.
func (t *transcript) observe(from, to device.State) {
	t.state.Store(int32(to))
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flushCallsLocked()
	t.printLocked(t.now(), t.stateColor.Sprintf("state %s -> %s", from, to))
}

// flush prints pending calls and the drained indication records.
func (t *transcript) flush(records []indicate.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flushCallsLocked()
	for _, r := range records {
		text := r.String()
		if c, ok := t.kindColors[r.Kind]; ok {
			text = c.Sprint(text)
		}
		t.printLocked(r.At, text)
	}
}

// note prints a free-form line.
func (t *transcript) note(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printLocked(t.now(), fmt.Sprintf(format, args...))
}

func (t *transcript) flushCallsLocked() {
	if t.journal == nil {
		return
	}
	calls := t.journal.Calls()
	if len(calls) < t.seen {
		t.seen = 0
	}
	for _, c := range calls[t.seen:] {
		t.printLocked(t.now(), t.callColor.Sprint("call "+c))
	}
	t.seen = len(calls)
}

func (t *transcript) printLocked(at time.Time, text string) {
	secs := at.Sub(t.epoch).Seconds()
	fmt.Fprintf(t.w, "[%8.3fs] %s\n", secs, text)
}
