// Package delivery routes named events to every live connection of a logical
// recipient identity.
//
// Delivery is best-effort and at-most-once: an offline recipient drops the
// event, and the sender gets no confirmation beyond the returned count.
package delivery

import (
	"io"
	"log/slog"

	"github.com/reelchat/reelchat/internal/identity"
	"github.com/reelchat/reelchat/internal/metrics"
)

// Router resolves identities through the registry and fans events out to the
// resolved connections.
type Router struct {
	registry *identity.Registry
	metrics  *metrics.Collector
	log      *slog.Logger
}

func NewRouter(registry *identity.Registry, m *metrics.Collector, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Router{
		registry: registry,
		metrics:  m,
		log:      logger,
	}
}

// Deliver pushes payload under event to every connection bound to the given
// identity and returns how many connections it reached. Zero is not an
// error: the recipient may simply be offline. A connection that fails to
// accept the write is treated as offline; its own read loop is responsible
// for unbinding it.
func (r *Router) Deliver(to, event string, payload any) int {
	if to == "" {
		return 0
	}

	delivered := 0
	for _, conn := range r.registry.Resolve(to) {
		if err := conn.Send(event, payload); err != nil {
			r.log.Debug("delivery send failed", "event", event, "to", to, "err", err)
			continue
		}
		delivered++
	}

	if r.metrics != nil {
		r.metrics.RecordDelivery(event, delivered)
	}
	return delivered
}

// DeliverToMany delivers the same event to each listed identity
// independently and returns the total number of connections reached. No
// ordering guarantee is made across recipients.
func (r *Router) DeliverToMany(ids []string, event string, payload any) int {
	total := 0
	for _, id := range ids {
		total += r.Deliver(id, event, payload)
	}
	return total
}
