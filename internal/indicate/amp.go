// Package indicate renders processed user events: an LED pattern, a tone or
// voice prompt, and an unsolicited AT notification. Each engine owns its own
// per-event table and decides independently whether the event is rendered.
package indicate

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/stack"
)

// Amplifier line owners
const (
	OwnerLED  = "led"
	OwnerTone = "tone"
)

// AmpLine shares the audio amplifier enable line between the LED and tone
// engines. The line is raised by the first owner and dropped by the last.
type AmpLine struct {
	amp    stack.Amplifier
	owners map[string]struct{}
	logger *logrus.Logger
}

// NewAmpLine creates a released amplifier line.
func NewAmpLine(amp stack.Amplifier, logger *logrus.Logger) *AmpLine {
	return &AmpLine{amp: amp, owners: make(map[string]struct{}), logger: logger}
}

// Acquire registers owner and enables the amplifier if it was off.
func (a *AmpLine) Acquire(owner string) error {
	if _, held := a.owners[owner]; held {
		return nil
	}
	a.owners[owner] = struct{}{}
	if len(a.owners) > 1 {
		return nil
	}
	a.logger.WithField("owner", owner).Debug("Amplifier enabled")
	return a.amp.SetAmp(true)
}

// Release drops owner and disables the amplifier once nobody holds it.
func (a *AmpLine) Release(owner string) error {
	if _, held := a.owners[owner]; !held {
		return nil
	}
	delete(a.owners, owner)
	if len(a.owners) > 0 {
		return nil
	}
	a.logger.WithField("owner", owner).Debug("Amplifier disabled")
	return a.amp.SetAmp(false)
}

// Held reports whether anyone holds the line.
func (a *AmpLine) Held() bool {
	return len(a.owners) > 0
}

// Owners lists the current holders in name order.
func (a *AmpLine) Owners() []string {
	out := make([]string, 0, len(a.owners))
	for o := range a.owners {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}
