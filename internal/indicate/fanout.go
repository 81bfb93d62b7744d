package indicate

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/events"
)

// Renderer is one indication sink.
type Renderer interface {
	Indicate(id events.ID) (detail string, rendered bool, err error)
}

// Fanout forwards a processed event to the LED engine, then the tone engine,
// then the AT notifier. A failing sink does not stop the ones after it.
type Fanout struct {
	sinks   []sinkEntry
	history *History
	now     func() time.Time
	logger  *logrus.Logger
}

type sinkEntry struct {
	kind Kind
	r    Renderer
}

// NewFanout wires the three sinks in their fixed order. Nil sinks are skipped.
func NewFanout(led, tone, at Renderer, history *History, now func() time.Time, logger *logrus.Logger) *Fanout {
	f := &Fanout{history: history, now: now, logger: logger}
	for _, s := range []sinkEntry{{KindLED, led}, {KindTone, tone}, {KindAT, at}} {
		if s.r != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Indicate renders id on every sink and returns what was rendered.
func (f *Fanout) Indicate(id events.ID) []Record {
	var out []Record
	for _, s := range f.sinks {
		detail, ok, err := s.r.Indicate(id)
		if err != nil {
			f.logger.WithFields(logrus.Fields{
				"event": id,
				"sink":  s.kind,
			}).WithError(err).Warn("Indication failed")
			continue
		}
		if !ok {
			continue
		}
		rec := Record{At: f.now(), Kind: s.kind, Event: id, Detail: detail}
		out = append(out, rec)
		if f.history != nil {
			f.history.Add(rec)
		}
	}
	if len(out) > 0 {
		f.logger.WithFields(logrus.Fields{
			"event": id,
			"sinks": len(out),
		}).Debug("Event indicated")
	}
	return out
}
