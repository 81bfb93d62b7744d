package sink

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/sched"
)

// limboEvents are the user events still acted on while in limbo, on top of
// the bookkeeping-exempt system events.
var limboEvents = map[events.ID]struct{}{
	events.EventPowerOn:               {},
	events.EventEnterTXContTestMode:   {},
	events.EventEnterDUTState:         {},
	events.EventResetPairedDeviceList: {},
}

// AllowedInLimbo reports whether id passes the limbo gate.
func AllowedInLimbo(id events.ID) bool {
	if events.IsBookkeepingExempt(id) {
		return true
	}
	_, ok := limboEvents[id]
	return ok
}

func (a *App) handleUserEvent(msg sched.Message) {
	id := msg.ID
	if !events.IsUserEvent(id) {
		atomic.AddInt64(&a.metrics.Unhandled, 1)
		a.logger.WithField("event", id).Warn("Unhandled user event")
		return
	}

	if !events.IsBookkeepingExempt(id) {
		id = a.bookkeeping(id)
	}

	if a.dev.State() == device.Limbo && !AllowedInLimbo(id) {
		atomic.AddInt64(&a.metrics.Suppressed, 1)
		a.logger.WithField("event", id).Debug("Event ignored in limbo")
		return
	}

	act, ok := a.actions[id]
	if !ok {
		atomic.AddInt64(&a.metrics.Unhandled, 1)
		a.logger.WithField("event", id).Warn("No action for user event")
		return
	}

	a.logger.WithFields(logrus.Fields{
		"event": id,
		"state": a.dev.State(),
	}).Debug("User event")

	msg.ID = id
	if !act(msg) {
		atomic.AddInt64(&a.metrics.Suppressed, 1)
		return
	}
	a.indicate(id)
}

// bookkeeping is phase 1: it runs once for every non-exempt user event and
// returns the identifier to act on.
func (a *App) bookkeeping(id events.ID) events.ID {
	atomic.AddInt64(&a.metrics.Bookkeeping, 1)

	if t := a.cfg.Timeouts.AutoSwitchOff; t > 0 {
		a.q.SendAfter(events.EventAutoSwitchOff, t, nil)
	}

	a.stopTask(events.EventMissedCall)
	a.dev.MissedCallsLeft = 0

	a.dev.Flags.LEDTimedOut = false
	if t := a.cfg.Timeouts.LEDTimeout; t > 0 {
		a.q.SendAfter(events.EventResetLEDTimeout, t, nil)
	}

	if a.dev.Flags.VolumeOrientationInverted {
		switch id {
		case events.EventVolumeUp:
			return events.EventVolumeDown
		case events.EventVolumeDown:
			return events.EventVolumeUp
		}
	}
	return id
}

// startTask runs a periodic task under id, replacing any running one.
func (a *App) startTask(id events.ID, next sched.PeriodFunc) {
	a.tasks[id] = a.q.StartPeriodic(id, next)
}

func (a *App) stopTask(id events.ID) {
	if t, ok := a.tasks[id]; ok {
		t.Stop()
		delete(a.tasks, id)
	}
}

// TaskActive reports whether the periodic task under id is running.
func (a *App) TaskActive(id events.ID) bool {
	return a.tasks[id].Active()
}

func (a *App) stopAllTasks() {
	for id, t := range a.tasks {
		t.Stop()
		delete(a.tasks, id)
	}
}

func (a *App) registerActions() {
	a.actions = make(map[events.ID]action)
	a.registerPowerActions()
	a.registerCallActions()
	a.registerMediaActions()
	a.registerPeripheralActions()
	a.registerSystemActions()
}

func (a *App) on(id events.ID, act action) {
	a.actions[id] = act
}

// always indicates unconditionally.
func always(sched.Message) bool { return true }
