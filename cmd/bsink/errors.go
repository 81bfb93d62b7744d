package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/srg/bsink/internal/atlink"
	"github.com/srg/bsink/internal/persist"
)

// Command-level errors
var (
	// ErrUnknownStimulus is returned for an input line that names neither a
	// user event nor a known stimulus.
	ErrUnknownStimulus = errors.New("unknown stimulus")

	// ErrScenario wraps problems with a replay scenario file.
	ErrScenario = errors.New("invalid scenario")

	// ErrHalted is returned when the sink stopped after an initialisation failure.
	ErrHalted = errors.New("sink halted")
)

// FormatUserError turns an error chain into a one-line message with a hint
// for the failures users can fix themselves.
func FormatUserError(err error) string {
	msg := err.Error()
	switch {
	case errors.Is(err, ErrUnknownStimulus):
		return fmt.Sprintf("%s (run 'bsink events' for the list of user events)", msg)
	case errors.Is(err, ErrScenario):
		return fmt.Sprintf("%s (expected a YAML document with a 'steps' list)", msg)
	case errors.Is(err, persist.ErrUnknownKey), errors.Is(err, persist.ErrWrongType):
		return fmt.Sprintf("%s (delete or fix the persisted records file)", msg)
	case errors.Is(err, atlink.ErrBufferFull):
		return fmt.Sprintf("%s (is anything reading the AT port?)", msg)
	case strings.Contains(msg, "permission denied"):
		return fmt.Sprintf("%s (check device permissions)", msg)
	}
	return msg
}
