package indicate

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/events"
)

// Line is an AT output link. WriteLine must not block the dispatch loop.
type Line interface {
	WriteLine(line string) error
}

// ATNotifier sends unsolicited per-event AT strings.
type ATNotifier struct {
	table  map[events.ID]string
	line   Line
	logger *logrus.Logger
}

// NewATNotifier resolves the AT table. A nil line discards notifications.
func NewATNotifier(table map[string]string, line Line, logger *logrus.Logger) (*ATNotifier, error) {
	t, err := resolve(table)
	if err != nil {
		return nil, err
	}
	return &ATNotifier{table: t, line: line, logger: logger}, nil
}

// SetLine replaces the output link.
func (n *ATNotifier) SetLine(line Line) {
	n.line = line
}

// Indicate writes the AT string for id.
func (n *ATNotifier) Indicate(id events.ID) (string, bool, error) {
	s, ok := n.table[id]
	if !ok || n.line == nil {
		return "", false, nil
	}
	if err := n.line.WriteLine(s); err != nil {
		return "", false, fmt.Errorf("at notify %s: %w", id, err)
	}
	return s, true, nil
}
