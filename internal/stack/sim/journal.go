// Package sim provides in-process stand-ins for the protocol libraries. Every
// call is written to a shared Journal; optional auto-responses feed the
// confirmations a real library would send back onto the sink queue.
package sim

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Journal records collaborator calls in order.
type Journal struct {
	mu       sync.Mutex
	calls    []string
	failures map[string]error
	logger   *logrus.Logger
}

// NewJournal creates an empty journal.
func NewJournal(logger *logrus.Logger) *Journal {
	return &Journal{
		failures: make(map[string]error),
		logger:   logger,
	}
}

// FailOn makes every later call named name (for example "hfp.Answer") return err.
// A nil err clears the failure.
func (j *Journal) FailOn(name string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err == nil {
		delete(j.failures, name)
		return
	}
	j.failures[name] = err
}

// Calls returns a copy of the recorded calls.
func (j *Journal) Calls() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

// Count returns how many recorded calls have the given name.
func (j *Journal) Count(name string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, c := range j.calls {
		if callName(c) == name {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls. Failures stay armed.
func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = nil
}

func (j *Journal) record(name string, args ...any) error {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	call := fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))

	j.mu.Lock()
	j.calls = append(j.calls, call)
	err := j.failures[name]
	j.mu.Unlock()

	entry := j.logger.WithField("call", call)
	if err != nil {
		entry.WithError(err).Debug("Simulated call failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	entry.Debug("Simulated call")
	return nil
}

func callName(call string) string {
	if i := strings.IndexByte(call, '('); i >= 0 {
		return call[:i]
	}
	return call
}
