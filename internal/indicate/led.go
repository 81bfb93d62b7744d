package indicate

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/sched"
	"github.com/srg/bsink/internal/stack"
	"github.com/srg/bsink/pkg/config"
)

// resolve maps a name-keyed indication table onto event identifiers.
func resolve[V any](table map[string]V) (map[events.ID]V, error) {
	out := make(map[events.ID]V, len(table))
	for name, v := range table {
		id, err := events.ParseUserEvent(name)
		if err != nil {
			return nil, fmt.Errorf("indication table: %w", err)
		}
		out[id] = v
	}
	return out, nil
}

// LEDEngine plays per-event LED patterns. A pattern holds the LEDs until
// EventLEDEventComplete is delivered after its duration.
type LEDEngine struct {
	table  map[events.ID]config.LEDPattern
	leds   stack.LEDs
	amp    *AmpLine
	q      sched.Scheduler
	dev    *device.DeviceState
	logger *logrus.Logger

	playing   events.ID
	sharedPIO bool
}

// NewLEDEngine resolves the pattern table.
func NewLEDEngine(table map[string]config.LEDPattern, leds stack.LEDs, amp *AmpLine, q sched.Scheduler, dev *device.DeviceState, logger *logrus.Logger) (*LEDEngine, error) {
	t, err := resolve(table)
	if err != nil {
		return nil, err
	}
	return &LEDEngine{table: t, leds: leds, amp: amp, q: q, dev: dev, logger: logger}, nil
}

// Indicate plays the pattern for id. It reports whether anything was shown.
func (e *LEDEngine) Indicate(id events.ID) (string, bool, error) {
	p, ok := e.table[id]
	if !ok {
		return "", false, nil
	}
	if !e.dev.Flags.LEDsEnabled || e.dev.Flags.LEDTimedOut {
		e.logger.WithField("event", id).Debug("LEDs disabled, pattern skipped")
		return "", false, nil
	}

	if e.playing != events.EventInvalid {
		e.release()
	}
	if p.SharedPIO {
		if err := e.amp.Acquire(OwnerLED); err != nil {
			return "", false, fmt.Errorf("led amplifier: %w", err)
		}
	}
	if err := e.leds.Play(p); err != nil {
		if p.SharedPIO {
			_ = e.amp.Release(OwnerLED)
		}
		return "", false, fmt.Errorf("led pattern %s: %w", id, err)
	}

	e.playing = id
	e.sharedPIO = p.SharedPIO
	e.q.SendAfter(events.EventLEDEventComplete, p.Duration(), id)
	return p.Color, true, nil
}

// Playing returns the event whose pattern is shown, or EventInvalid.
func (e *LEDEngine) Playing() events.ID {
	return e.playing
}

// Complete finishes the current pattern.
func (e *LEDEngine) Complete() error {
	if e.playing == events.EventInvalid {
		return nil
	}
	return e.release()
}

// Cancel stops the current pattern before it completes.
func (e *LEDEngine) Cancel() error {
	e.q.CancelAll(events.EventLEDEventComplete)
	if e.playing == events.EventInvalid {
		return nil
	}
	err := e.leds.Stop()
	if rerr := e.release(); err == nil {
		err = rerr
	}
	return err
}

func (e *LEDEngine) release() error {
	shared := e.sharedPIO
	e.playing = events.EventInvalid
	e.sharedPIO = false
	if shared {
		return e.amp.Release(OwnerLED)
	}
	return nil
}
