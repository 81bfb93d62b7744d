package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/bsink/internal/atlink"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/groutine"
	"github.com/srg/bsink/internal/indicate"
	"github.com/srg/bsink/internal/sched"
	"golang.org/x/term"
)

// runCmd drives the sink in real time from standard input
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sink interactively",
	Long: `Run the headset application in real time against simulated libraries.

Each input line is one stimulus: a user event name (PowerOn, volumeup, ...)
or an AG message such as "ag-connect 7c:d1:c3:00:12:34" or "call incoming".
Type "help" for the full list, "status" for counters and "quit" to exit.

State changes and indications are printed as they happen. AT notifications
can also be exposed on a pseudo-terminal (--at-pty) or a serial port
(--at-port) for a host-side AT parser.`,
	Example: `  bsink run --power-on
  echo -e "poweron\nvolumeup" | bsink run --linger 3s
  bsink run --at-pty --config headset.yaml`,
	Args: cobra.NoArgs,
	RunE: runSink,
}

var (
	runATPty   bool
	runATPort  string
	runATBaud  int
	runPowerOn bool
	runLinger  time.Duration
	runCalls   bool
	runNoColor bool
)

func init() {
	runCmd.Flags().BoolVar(&runATPty, "at-pty", false, "Expose AT notifications on a new pseudo-terminal")
	runCmd.Flags().StringVar(&runATPort, "at-port", "", "Write AT notifications to this serial port")
	runCmd.Flags().IntVar(&runATBaud, "at-baud", 115200, "Baud rate for --at-port")
	runCmd.Flags().BoolVar(&runPowerOn, "power-on", false, "Send PowerOn before reading input")
	runCmd.Flags().DurationVar(&runLinger, "linger", 2*time.Second, "Keep running this long after input ends")
	runCmd.Flags().BoolVar(&runCalls, "calls", false, "Print calls into the simulated libraries")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "Disable colored output")
	runCmd.Flags().BoolP("verbose", "V", false, "Enable debug logging")
}

func runSink(cmd *cobra.Command, _ []string) error {
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

	link, err := openATLink(logger)
	if err != nil {
		return err
	}
	var atLine indicate.Line
	if link != nil {
		defer link.Close()
		atLine = link
		fmt.Fprintf(cmd.ErrOrStderr(), "AT notifications on %s\n", link.Name())
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Listen for Ctrl+C to stop
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nCtrl+C pressed, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	var (
		haltMu     sync.Mutex
		haltReason string
	)
	q := sched.NewRealtime(logger)
	sess, err := newSession(sessionOptions{
		cfg:    cfg,
		q:      q,
		clock:  time.Now,
		out:    cmd.OutOrStdout(),
		colors: !runNoColor && isTerminal(cmd.OutOrStdout()),
		calls:  runCalls,
		atLine: atLine,
		halt: func(reason string) {
			haltMu.Lock()
			haltReason = reason
			haltMu.Unlock()
			cancel()
		},
		logger: logger,
	})
	if err != nil {
		return err
	}

	if runPowerOn {
		q.Post(events.EventPowerOn, nil)
	}

	groutine.Go(ctx, "stdin-reader", func(ctx context.Context) {
		readStimuli(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), q, sess, link, cancel)
	})

	err = q.Run(ctx)

	haltMu.Lock()
	defer haltMu.Unlock()
	if haltReason != "" {
		return fmt.Errorf("%w: %s", ErrHalted, haltReason)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openATLink opens the endpoint selected by --at-pty or --at-port. It
// returns nil when neither is set.
func openATLink(logger *logrus.Logger) (*atlink.Link, error) {
	if runATPty && runATPort != "" {
		return nil, errors.New("--at-pty and --at-port are mutually exclusive")
	}

	var (
		ep  atlink.Endpoint
		err error
	)
	switch {
	case runATPty:
		ep, err = atlink.OpenPTY()
	case runATPort != "":
		ep, err = atlink.OpenSerial(runATPort, runATBaud)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open AT endpoint: %w", err)
	}
	return atlink.New(ep, atlink.Options{Logger: logger}), nil
}

// readStimuli posts one message per input line until EOF, "quit" or ctx is
// done. After EOF the sink keeps running for --linger.
func readStimuli(ctx context.Context, in io.Reader, errOut io.Writer, q *sched.Realtime, sess *session, link *atlink.Link, cancel context.CancelFunc) {
	interactive := isTerminal(in)
	prompt := func() {
		if interactive {
			fmt.Fprint(errOut, "> ")
		}
	}

	scanner := bufio.NewScanner(in)
	prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case line == "quit" || line == "exit":
			cancel()
			return
		case line == "help":
			printStimulusHelp(errOut)
		case line == "status":
			printStatus(errOut, sess, link)
		default:
			st, err := parseStimulus(line)
			if err != nil {
				fmt.Fprintf(errOut, "ERROR: %s\n", FormatUserError(err))
				break
			}
			q.Post(st.ID, st.Payload)
		}
		prompt()
	}

	select {
	case <-ctx.Done():
	case <-time.After(runLinger):
		cancel()
	}
}

func printStimulusHelp(w io.Writer) {
	fmt.Fprintln(w, "Input lines:")
	fmt.Fprintln(w, stimulusHelp)
	fmt.Fprintln(w, "  status                         show counters and persisted records")
	fmt.Fprintln(w, "  help                           show this list")
	fmt.Fprintln(w, "  quit                           stop the sink")
}

func printStatus(w io.Writer, sess *session, link *atlink.Link) {
	m := sess.app.Metrics()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "state\t%s\n", sess.out.State())
	fmt.Fprintf(tw, "dispatched\t%d\n", m.Dispatched)
	fmt.Fprintf(tw, "unhandled\t%d\n", m.Unhandled)
	fmt.Fprintf(tw, "bookkeeping\t%d\n", m.Bookkeeping)
	fmt.Fprintf(tw, "suppressed\t%d\n", m.Suppressed)
	fmt.Fprintf(tw, "indicated\t%d\n", m.Indicated)
	if n := sess.history.Overwritten(); n > 0 {
		fmt.Fprintf(tw, "history lost\t%d\n", n)
	}

	records := sess.records.Snapshot()
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(tw, "record %s\t%v\n", k, records[k])
	}

	if link != nil {
		s := link.Stats()
		fmt.Fprintf(tw, "at link\t%s\n", link.Name())
		fmt.Fprintf(tw, "at lines\t%d queued, %d dropped\n", s.LinesQueued, s.LinesDropped)
		fmt.Fprintf(tw, "at buffer\t%d/%d bytes\n", s.Queued, s.Capacity)
	}
	tw.Flush()
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
