package chat

import (
	"errors"
	"io"
	"log/slog"

	"github.com/reelchat/reelchat/internal/delivery"
	"github.com/reelchat/reelchat/internal/metrics"
)

// Service validates and persists chat sends and drives the notifications
// around them.
type Service struct {
	store   *Store
	router  *delivery.Router
	metrics *metrics.Collector
	log     *slog.Logger
}

func NewService(store *Store, router *delivery.Router, m *metrics.Collector, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:   store,
		router:  router,
		metrics: m,
		log:     logger,
	}
}

// Send stores a message and notifies every live session of both parties with
// a message-received event. Invalid input is silently dropped: the transport
// is fire-and-forget and the sender has no confirmation channel. Neither
// party needs to be online; the store accepts messages for identities with
// no live session.
func (s *Service) Send(from, to, text string) {
	msg, err := s.store.Append(from, to, text)
	if err != nil {
		s.log.Debug("chat send dropped", "from", from, "to", to, "err", err)
		if s.metrics != nil {
			s.metrics.RecordEventDropped(metrics.DropReasonInvalid)
		}
		return
	}

	if s.metrics != nil {
		s.metrics.RecordMessageStored()
	}

	recipients := []string{from, to}
	if from == to {
		// Self-chat: both parties are the same set of sessions.
		recipients = recipients[:1]
	}
	s.router.DeliverToMany(recipients, delivery.EventMessageReceived, msg)
}

// Conversation returns viewer's visible messages with peer in insertion
// order.
func (s *Service) Conversation(viewer, peer string) []Message {
	return s.store.Query(viewer, peer)
}

// DeleteForViewer hides a message from viewer and tells only that viewer's
// sessions to re-sync. The peer is deliberately not notified: "deleted for
// me" must never leak as "deleted for you".
func (s *Service) DeleteForViewer(id, viewer string) error {
	if err := s.store.SoftDelete(id, viewer); err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrValidation) {
			s.log.Warn("soft delete failed", "id", id, "viewer", viewer, "err", err)
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordMessageSoftDeleted()
	}
	s.router.Deliver(viewer, delivery.EventConversationStale, struct{}{})
	return nil
}
