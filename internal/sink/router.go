package sink

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/sched"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// route binds one identifier range to its subsystem handler.
type route struct {
	rng     events.Range
	handler sched.Handler
}

// Router dispatches each message to the handler of the first registered
// range containing its identifier. Registration order is priority order.
type Router struct {
	routes *orderedmap.OrderedMap[string, route]
	logger *logrus.Logger
}

// NewRouter creates an empty router.
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		routes: orderedmap.New[string, route](),
		logger: logger,
	}
}

// Register appends a range. Ranges must not overlap and names must be unique.
func (r *Router) Register(rng events.Range, h sched.Handler) error {
	if rng.Base > rng.Top {
		return fmt.Errorf("range %s: base above top", rng)
	}
	if _, exists := r.routes.Get(rng.Name); exists {
		return fmt.Errorf("range %s: already registered", rng)
	}
	for pair := r.routes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.rng.Overlaps(rng) {
			return fmt.Errorf("range %s overlaps %s", rng, pair.Value.rng)
		}
	}
	r.routes.Set(rng.Name, route{rng: rng, handler: h})
	return nil
}

// Ranges lists the registered ranges in priority order.
func (r *Router) Ranges() []events.Range {
	out := make([]events.Range, 0, r.routes.Len())
	for pair := r.routes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.rng)
	}
	return out
}

// Lookup returns the range an identifier dispatches to.
func (r *Router) Lookup(id events.ID) (events.Range, bool) {
	for pair := r.routes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.rng.Contains(id) {
			return pair.Value.rng, true
		}
	}
	return events.Range{}, false
}

// Dispatch runs exactly one handler for msg. Identifiers outside every range
// are logged and dropped; Dispatch reports whether a handler ran.
func (r *Router) Dispatch(msg sched.Message) bool {
	for pair := r.routes.Oldest(); pair != nil; pair = pair.Next() {
		if !pair.Value.rng.Contains(msg.ID) {
			continue
		}
		r.logger.WithFields(logrus.Fields{
			"event": msg.ID,
			"range": pair.Key,
		}).Debug("Dispatching message")
		pair.Value.handler(msg)
		return true
	}
	r.logger.WithField("event", msg.ID).Warn("Unhandled message identifier, dropped")
	return false
}
