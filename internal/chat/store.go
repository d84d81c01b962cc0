// Package chat owns the conversation log and the chat send/delete flows.
//
// Messages are append-only: a record is never physically removed, and the
// only mutation after creation is growth of its per-viewer deletion set.
package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reelchat/reelchat/internal/ratelimit"
)

// Message is a stored chat message. deletedFor is per-record state that is
// never serialized; Query projects it away.
type Message struct {
	ID     string    `json:"id"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`

	deletedFor map[string]struct{}
}

// Store is an in-memory append-only conversation log. Insertion order is
// chronological order: there is a single log per process and every append
// happens under the store lock.
type Store struct {
	clock        ratelimit.Clock
	maxTextBytes int

	mu       sync.Mutex
	messages []*Message
	byID     map[string]*Message
}

// NewStore returns an empty store. maxTextBytes bounds message text length
// after trimming; zero means unbounded.
func NewStore(clock ratelimit.Clock, maxTextBytes int) *Store {
	if clock == nil {
		clock = ratelimit.RealClock{}
	}
	return &Store{
		clock:        clock,
		maxTextBytes: maxTextBytes,
		byID:         make(map[string]*Message),
	}
}

// Append validates, stamps and stores a new message and returns a copy of
// the stored record.
func (s *Store) Append(from, to, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if from == "" || to == "" || text == "" {
		return Message{}, ErrValidation
	}
	if s.maxTextBytes > 0 && len(text) > s.maxTextBytes {
		return Message{}, ErrValidation
	}

	msg := &Message{
		ID:         uuid.NewString(),
		From:       from,
		To:         to,
		Text:       text,
		SentAt:     s.clock.Now().UTC(),
		deletedFor: make(map[string]struct{}),
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.byID[msg.ID] = msg
	s.mu.Unlock()

	return msg.view(), nil
}

// Query returns, in insertion order, every message exchanged between the
// unordered pair {viewer, peer} that viewer has not deleted for themselves.
func (s *Store) Query(viewer, peer string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, 0)
	for _, msg := range s.messages {
		if !msg.between(viewer, peer) {
			continue
		}
		if _, deleted := msg.deletedFor[viewer]; deleted {
			continue
		}
		out = append(out, msg.view())
	}
	return out
}

// SoftDelete hides the message with the given id from viewer's future
// queries. The record itself and the peer's view are untouched. Idempotent.
func (s *Store) SoftDelete(id, viewer string) error {
	if viewer == "" {
		return ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	msg.deletedFor[viewer] = struct{}{}
	return nil
}

// Len reports the number of stored records, including ones hidden from every
// viewer.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (m *Message) between(a, b string) bool {
	return (m.From == a && m.To == b) || (m.From == b && m.To == a)
}

// view returns a copy safe to hand out: same public fields, no deletion set.
func (m *Message) view() Message {
	return Message{
		ID:     m.ID,
		From:   m.From,
		To:     m.To,
		Text:   m.Text,
		SentAt: m.SentAt,
	}
}
