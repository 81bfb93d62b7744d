// Package sink is the application core of the headset: one App value owns the
// device record, routes every inbound message by identifier range to its
// subsystem handler, runs user events through bookkeeping, the limbo gate
// and their action, and fans processed events out to the indication engines.
//
// An App is not safe for concurrent use. All of its methods, including the
// handler installed on the scheduler, must run on the dispatch goroutine.
package sink

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/indicate"
	"github.com/srg/bsink/internal/periph"
	"github.com/srg/bsink/internal/persist"
	"github.com/srg/bsink/internal/sched"
	"github.com/srg/bsink/internal/stack"
	"github.com/srg/bsink/internal/statemgr"
	"github.com/srg/bsink/pkg/config"
)

// HaltFunc stops the device after an unrecoverable initialization failure.
// It is not expected to return.
type HaltFunc func(reason string)

// Options assemble an App. Config, Stack and Scheduler are required.
type Options struct {
	Config      *config.Config
	Stack       *stack.Stack
	Scheduler   sched.Scheduler
	Clock       func() time.Time  // defaults to time.Now
	Peripherals *periph.Set       // nil when no peripheral is fitted
	Records     *persist.Store    // restored into the device record at boot
	ATLine      indicate.Line     // nil discards AT notifications
	History     *indicate.History // nil keeps no history
	Halt        HaltFunc          // defaults to logger.Fatalf
	Logger      *logrus.Logger
}

// Metrics are dispatch counters. They may be read from any goroutine.
type Metrics struct {
	Dispatched  int64
	Unhandled   int64
	Bookkeeping int64
	Suppressed  int64
	Indicated   int64
}

func (m *Metrics) snapshot() Metrics {
	return Metrics{
		Dispatched:  atomic.LoadInt64(&m.Dispatched),
		Unhandled:   atomic.LoadInt64(&m.Unhandled),
		Bookkeeping: atomic.LoadInt64(&m.Bookkeeping),
		Suppressed:  atomic.LoadInt64(&m.Suppressed),
		Indicated:   atomic.LoadInt64(&m.Indicated),
	}
}

// action is the phase-2 handler of one user event. It reports whether the
// event should be indicated.
type action func(msg sched.Message) bool

// App is the application context.
type App struct {
	cfg    *config.Config
	dev    *device.DeviceState
	st     *stack.Stack
	q      sched.Scheduler
	mgr    *statemgr.Manager
	periph *periph.Set
	router *Router

	amp     *indicate.AmpLine
	led     *indicate.LEDEngine
	tone    *indicate.ToneEngine
	at      *indicate.ATNotifier
	fanout  *indicate.Fanout
	history *indicate.History

	actions map[events.ID]action
	tasks   map[events.ID]*sched.Task

	callRejected [2]bool
	subVolume    int

	halt    HaltFunc
	logger  *logrus.Logger
	metrics Metrics
}

// New builds the application context and its routing table.
func New(opts Options) (*App, error) {
	if opts.Config == nil || opts.Stack == nil || opts.Scheduler == nil {
		return nil, errors.New("sink: config, stack and scheduler are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	st := *opts.Stack
	if st.Persist == nil && opts.Records != nil {
		st.Persist = opts.Records
	}
	if st.Peripherals == nil && opts.Peripherals != nil {
		st.Peripherals = opts.Peripherals
	}

	dev := device.New(opts.Config)
	if opts.Records != nil {
		opts.Records.Apply(dev)
	}

	a := &App{
		cfg:     opts.Config,
		dev:     dev,
		st:      &st,
		q:       opts.Scheduler,
		periph:  opts.Peripherals,
		history: opts.History,
		tasks:   make(map[events.ID]*sched.Task),
		logger:  logger,
		halt:    opts.Halt,

		subVolume: opts.Config.Volume.Default,
	}
	if a.periph == nil {
		a.periph = &periph.Set{}
	}
	if a.halt == nil {
		a.halt = func(reason string) { logger.Fatalf("Halting: %s", reason) }
	}
	a.mgr = statemgr.New(dev, a.st, a.q, opts.Config.Timeouts, logger)

	var err error
	a.amp = indicate.NewAmpLine(st.Amp, logger)
	if a.led, err = indicate.NewLEDEngine(opts.Config.Indications.LED, st.LEDs, a.amp, a.q, dev, logger); err != nil {
		return nil, err
	}
	if a.tone, err = indicate.NewToneEngine(opts.Config.Indications.Tone, st.Audio, a.amp, dev, logger); err != nil {
		return nil, err
	}
	if a.at, err = indicate.NewATNotifier(opts.Config.Indications.AT, opts.ATLine, logger); err != nil {
		return nil, err
	}
	a.fanout = indicate.NewFanout(a.led, a.tone, a.at, a.history, clock, logger)

	a.registerActions()
	if a.router, err = a.buildRouter(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) buildRouter() (*Router, error) {
	r := NewRouter(a.logger)
	handlers := []struct {
		rng events.Range
		h   sched.Handler
	}{
		{events.UserEventsRange, a.handleUserEvent},
		{events.ConnectionRange, a.handleConnection},
		{events.ProfileRange, a.handleProfile},
		{events.CodecRange, a.handleCodec},
		{events.PowerRange, a.handlePower},
		{events.PhonebookRange, a.handlePhonebook},
		{events.MessagingRange, a.handleMessaging},
		{events.AvrcpRange, a.handleAvrcp},
		{events.AudioPluginRange, a.handleAudioPlugin},
		{events.UsbRange, a.handleUsb},
		{events.GaiaRange, a.handleGaia},
		{events.DisplayRange, a.handleDisplay},
		{events.BatteryReportRange, a.handleBatteryReport},
		{events.SubwooferRange, a.handleSubwoofer},
		{events.FmRange, a.handleFm},
	}
	for _, h := range handlers {
		if err := r.Register(h.rng, h.h); err != nil {
			return nil, fmt.Errorf("building router: %w", err)
		}
	}
	return r, nil
}

// Handle is the scheduler handler: it dispatches one message to completion.
func (a *App) Handle(msg sched.Message) {
	atomic.AddInt64(&a.metrics.Dispatched, 1)
	if !a.router.Dispatch(msg) {
		atomic.AddInt64(&a.metrics.Unhandled, 1)
	}
}

// Device exposes the session record.
func (a *App) Device() *device.DeviceState {
	return a.dev
}

// State returns the lifecycle state.
func (a *App) State() device.State {
	return a.dev.State()
}

// Manager exposes the state manager.
func (a *App) Manager() *statemgr.Manager {
	return a.mgr
}

// Router exposes the routing table.
func (a *App) Router() *Router {
	return a.router
}

// Peripherals returns the fitted peripheral drivers.
func (a *App) Peripherals() *periph.Set {
	return a.periph
}

// Amplifier exposes the shared amplifier line.
func (a *App) Amplifier() *indicate.AmpLine {
	return a.amp
}

// Metrics returns a snapshot of the dispatch counters.
func (a *App) Metrics() Metrics {
	return a.metrics.snapshot()
}

// SetATLine replaces the AT output link.
func (a *App) SetATLine(line indicate.Line) {
	a.at.SetLine(line)
}

// raise queues an internal user event behind the current message.
func (a *App) raise(id events.ID) {
	a.logger.WithField("event", id).Debug("Raising event")
	a.q.Send(id, nil)
}

func (a *App) indicate(id events.ID) {
	if recs := a.fanout.Indicate(id); len(recs) > 0 {
		atomic.AddInt64(&a.metrics.Indicated, 1)
	}
}

func (a *App) persist(key string, value any) {
	if a.st.Persist == nil {
		return
	}
	if err := a.st.Persist.Persist(key, value); err != nil {
		a.logger.WithField("key", key).WithError(err).Warn("Failed to persist record")
	}
}

// warn logs a failed collaborator call. Failures never abort dispatch.
func (a *App) warn(err error, msg string) bool {
	if err == nil {
		return false
	}
	a.logger.WithField("state", a.dev.State()).WithError(err).Warn(msg)
	return true
}

// refused logs a refused transition at debug level and reports whether the
// transition went through.
func (a *App) refused(err error, op string) bool {
	if err == nil {
		return false
	}
	var te *device.TransitionError
	if errors.As(err, &te) {
		a.logger.WithFields(logrus.Fields{
			"op":     op,
			"reason": te.Refusal,
		}).Debug("Transition refused")
		return true
	}
	a.logger.WithField("op", op).WithError(err).Warn("Transition completed with errors")
	return false
}
