package testutils

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/indicate"
	"github.com/srg/bsink/internal/periph"
	"github.com/srg/bsink/internal/persist"
	"github.com/srg/bsink/internal/sched"
	"github.com/srg/bsink/internal/sink"
	"github.com/srg/bsink/internal/stack/sim"
	"github.com/srg/bsink/pkg/config"
)

// SinkBuilder assembles a sink on simulated libraries and a virtual clock.
//
// Usage:
//
//	f, err := testutils.NewSinkBuilder().
//	    WithConfig(func(c *config.Config) { c.Features.Multipoint = true }).
//	    WithAutoRespond(true).
//	    Build()
type SinkBuilder struct {
	cfg         *config.Config
	autoRespond bool
	fitted      *periph.Fitted
	records     *persist.Store
	atLine      indicate.Line
	historySize uint32
	logger      *logrus.Logger
}

// NewSinkBuilder starts from the default configuration with auto-responding
// libraries and a discarded log.
func NewSinkBuilder() *SinkBuilder {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &SinkBuilder{
		cfg:         config.DefaultConfig(),
		autoRespond: true,
		historySize: indicate.DefaultHistorySize,
		logger:      logger,
	}
}

// WithConfig edits the configuration before the sink is built.
func (b *SinkBuilder) WithConfig(edit func(cfg *config.Config)) *SinkBuilder {
	edit(b.cfg)
	return b
}

// WithAutoRespond selects whether simulated libraries confirm requests.
func (b *SinkBuilder) WithAutoRespond(on bool) *SinkBuilder {
	b.autoRespond = on
	return b
}

// WithPeripherals overrides the fitted peripherals, which otherwise follow
// the feature flags.
func (b *SinkBuilder) WithPeripherals(fitted periph.Fitted) *SinkBuilder {
	b.fitted = &fitted
	return b
}

// WithRecords restores persisted records into the sink at boot.
func (b *SinkBuilder) WithRecords(records *persist.Store) *SinkBuilder {
	b.records = records
	return b
}

// WithATLine routes AT notifications to line instead of the fixture's
// ATRecorder.
func (b *SinkBuilder) WithATLine(line indicate.Line) *SinkBuilder {
	b.atLine = line
	return b
}

// WithHistorySize bounds the indication history.
func (b *SinkBuilder) WithHistorySize(n uint32) *SinkBuilder {
	b.historySize = n
	return b
}

// WithLogger replaces the discarded log.
func (b *SinkBuilder) WithLogger(logger *logrus.Logger) *SinkBuilder {
	b.logger = logger
	return b
}

// Build creates the sink. The handler is installed on the virtual runner;
// nothing is delivered until the fixture is driven.
func (b *SinkBuilder) Build() (*SinkFixture, error) {
	q := sched.NewVirtual(b.logger)
	s := sim.New(q, sim.Options{AutoRespond: b.autoRespond, ToneDuration: b.cfg.Timeouts.ToneDuration}, b.logger)
	bus := sim.NewBus(s.Journal)

	fitted := periph.Fitted{
		Vibration: b.cfg.Features.VibrationFitted,
		EL:        b.cfg.Features.ELRampFitted,
		Accel:     b.cfg.Features.AccelFitted,
	}
	if b.fitted != nil {
		fitted = *b.fitted
	}
	peripherals := periph.NewSet(fitted, periph.Options{
		Bus:    bus,
		Delay:  func(time.Duration) {},
		Logger: b.logger,
	}, sim.NewPin(s.Journal, "vibration"), sim.NewPin(s.Journal, "el"))

	records := b.records
	if records == nil {
		records = persist.NewMemory(b.logger)
	}

	f := &SinkFixture{
		AT:          &ATRecorder{},
		Q:           q,
		Sim:         s,
		Bus:         bus,
		Peripherals: peripherals,
		Records:     records,
		History:     indicate.NewHistory(b.historySize),
	}
	atLine := b.atLine
	if atLine == nil {
		atLine = f.AT
	}
	app, err := sink.New(sink.Options{
		Config:      b.cfg,
		Stack:       s.Stack(records, peripherals),
		Scheduler:   q,
		Clock:       q.Now,
		Peripherals: peripherals,
		Records:     records,
		ATLine:      atLine,
		History:     f.History,
		Halt:        func(reason string) { f.Halts = append(f.Halts, reason) },
		Logger:      b.logger,
	})
	if err != nil {
		return nil, err
	}
	f.App = app
	q.SetHandler(app.Handle)
	return f, nil
}

// SinkFixture is a built sink and its simulated surroundings.
type SinkFixture struct {
	App         *sink.App
	Q           *sched.Virtual
	Sim         *sim.Sim
	Bus         *sim.Bus
	Peripherals *periph.Set
	Records     *persist.Store
	History     *indicate.History
	AT          *ATRecorder
	Halts       []string

	records []indicate.Record
}

// Event queues a user event and delivers everything now due.
func (f *SinkFixture) Event(id events.ID) {
	f.Message(id, nil)
}

// Message queues a subsystem message and delivers everything now due.
func (f *SinkFixture) Message(id events.ID, payload any) {
	f.Q.Send(id, payload)
	f.Q.RunUntilIdle()
}

// Advance moves virtual time forward, delivering what falls due.
func (f *SinkFixture) Advance(d time.Duration) {
	f.Q.Advance(d)
}

// Indications returns every indication rendered so far.
func (f *SinkFixture) Indications() []indicate.Record {
	f.records = append(f.records, f.History.Drain()...)
	return append([]indicate.Record(nil), f.records...)
}

// Indicated lists the events rendered by kind, in order.
func (f *SinkFixture) Indicated(kind indicate.Kind) []events.ID {
	var ids []events.ID
	for _, r := range f.Indications() {
		if r.Kind == kind {
			ids = append(ids, r.Event)
		}
	}
	return ids
}

// ResetIndications forgets rendered indications.
func (f *SinkFixture) ResetIndications() {
	f.History.Drain()
	f.records = nil
	f.AT.Lines = nil
}

// ATRecorder is an AT line that keeps what was written.
type ATRecorder struct {
	Lines []string
	Err   error
}

func (r *ATRecorder) WriteLine(line string) error {
	if r.Err != nil {
		return r.Err
	}
	r.Lines = append(r.Lines, line)
	return nil
}
