package main

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/indicate"
	"github.com/srg/bsink/internal/periph"
	"github.com/srg/bsink/internal/persist"
	"github.com/srg/bsink/internal/sched"
	"github.com/srg/bsink/internal/sink"
	"github.com/srg/bsink/internal/stack/sim"
	"github.com/srg/bsink/pkg/config"
)

// runner is a scheduler that owns its dispatch loop.
type runner interface {
	sched.Scheduler
	SetHandler(h sched.Handler)
}

// session is a sink wired to simulated libraries and a transcript.
type session struct {
	app     *sink.App
	sim     *sim.Sim
	records *persist.Store
	history *indicate.History
	out     *transcript
}

type sessionOptions struct {
	cfg    *config.Config
	q      runner
	clock  func() time.Time
	out    io.Writer
	colors bool
	calls  bool
	atLine indicate.Line
	halt   sink.HaltFunc
	delay  func(time.Duration)
	logger *logrus.Logger
}

// newSession assembles the sink on opts.q and installs the dispatch handler.
func newSession(opts sessionOptions) (*session, error) {
	cfg := opts.cfg
	s := sim.New(opts.q, sim.Options{AutoRespond: true, ToneDuration: cfg.Timeouts.ToneDuration}, opts.logger)
	bus := sim.NewBus(s.Journal)

	peripherals := periph.NewSet(periph.Fitted{
		Vibration: cfg.Features.VibrationFitted,
		EL:        cfg.Features.ELRampFitted,
		Accel:     cfg.Features.AccelFitted,
	}, periph.Options{
		Bus:    bus,
		Delay:  opts.delay,
		Logger: opts.logger,
	}, sim.NewPin(s.Journal, "vibration"), sim.NewPin(s.Journal, "el"))

	records := persist.NewMemory(opts.logger)
	if cfg.Persist.Path != "" {
		var err error
		if records, err = persist.Open(cfg.Persist.Path, opts.logger); err != nil {
			return nil, fmt.Errorf("failed to open records: %w", err)
		}
	}

	sess := &session{
		sim:     s,
		records: records,
		history: indicate.NewHistory(indicate.DefaultHistorySize),
		out:     newTranscript(opts.out, opts.clock, opts.colors),
	}
	if opts.calls {
		sess.out.showCalls(s.Journal)
	}

	app, err := sink.New(sink.Options{
		Config:      cfg,
		Stack:       s.Stack(records, peripherals),
		Scheduler:   opts.q,
		Clock:       opts.clock,
		Peripherals: peripherals,
		Records:     records,
		ATLine:      opts.atLine,
		History:     sess.history,
		Halt:        opts.halt,
		Logger:      opts.logger,
	})
	if err != nil {
		return nil, err
	}
	sess.app = app
	app.Manager().SetObserver(sess.out.observe)
	sess.out.state.Store(int32(app.State()))

	opts.q.SetHandler(func(msg sched.Message) {
		app.Handle(msg)
		sess.out.flush(sess.history.Drain())
	})
	return sess, nil
}
