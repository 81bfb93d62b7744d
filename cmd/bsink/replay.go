package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/srg/bsink/internal/sched"
	"gopkg.in/yaml.v3"
)

// replayCmd runs a scenario in virtual time
var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "Replay a scenario in virtual time",
	Long: `Replay a YAML scenario against the sink in virtual time and print the
transcript. Timers fire at their virtual due time, so a scenario covering
minutes of device time completes instantly.

A scenario is a list of steps. Each step waits 'after' (default 0) since the
previous step, then sends one stimulus written as for 'bsink run':

  steps:
    - send: PowerOn
    - after: 1s
      send: VolumeUp
    - after: 2m
      send: PowerOff

Use "-" to read the scenario from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var (
	replaySettle time.Duration
	replayCalls  bool
)

func init() {
	replayCmd.Flags().DurationVar(&replaySettle, "settle", 0, "Virtual time to run after the last step")
	replayCmd.Flags().BoolVar(&replayCalls, "calls", false, "Print calls into the simulated libraries")
}

// scenario is a replay script.
type scenario struct {
	Steps []step `yaml:"steps"`
}

type step struct {
	After time.Duration `yaml:"after"`
	Send  string        `yaml:"send"`

	stim stimulus
}

// loadScenario decodes and checks a scenario. Every step is parsed up front
// so a typo fails before anything runs.
func loadScenario(r io.Reader) (*scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrScenario)
		}
		return nil, fmt.Errorf("%w: %v", ErrScenario, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrScenario)
	}
	for i := range sc.Steps {
		s := &sc.Steps[i]
		if s.After < 0 {
			return nil, fmt.Errorf("%w: step %d: negative delay %s", ErrScenario, i+1, s.After)
		}
		stim, err := parseStimulus(s.Send)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", ErrScenario, i+1, err)
		}
		s.stim = stim
	}
	return &sc, nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cmd, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	in := cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open scenario: %w", err)
		}
		defer f.Close()
		in = f
	}
	sc, err := loadScenario(in)
	if err != nil {
		return err
	}

	var halted string
	q := sched.NewVirtual(logger)
	sess, err := newSession(sessionOptions{
		cfg:    cfg,
		q:      q,
		clock:  q.Now,
		out:    cmd.OutOrStdout(),
		calls:  replayCalls,
		atLine: discardLine{},
		halt:   func(reason string) { halted = reason },
		delay:  func(time.Duration) {},
		logger: logger,
	})
	if err != nil {
		return err
	}

	for _, s := range sc.Steps {
		q.Advance(s.After)
		if halted != "" {
			break
		}
		q.Send(s.stim.ID, s.stim.Payload)
		q.RunUntilIdle()
	}
	if halted == "" {
		q.Advance(replaySettle)
	}

	if halted != "" {
		sess.out.note("halted: %s", halted)
		return fmt.Errorf("%w: %s", ErrHalted, halted)
	}
	return nil
}

// discardLine accepts AT notifications without writing them anywhere, so
// they still show up in the transcript.
type discardLine struct{}

func (discardLine) WriteLine(string) error { return nil }
