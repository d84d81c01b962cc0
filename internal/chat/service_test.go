package chat

import (
	"errors"
	"testing"
	"time"

	"github.com/reelchat/reelchat/internal/delivery"
	"github.com/reelchat/reelchat/internal/identity"
)

type recordedEvent struct {
	event   string
	payload any
}

type fakeConn struct {
	events []recordedEvent
}

func (c *fakeConn) Send(event string, payload any) error {
	c.events = append(c.events, recordedEvent{event: event, payload: payload})
	return nil
}

func newTestService(t *testing.T) (*Service, *identity.Registry, *Store) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewStore(clock, 0)
	registry := identity.NewRegistry()
	router := delivery.NewRouter(registry, nil, nil)
	return NewService(store, router, nil, nil), registry, store
}

func TestSendStoresAndNotifiesBothParties(t *testing.T) {
	svc, registry, store := newTestService(t)

	alice := &fakeConn{}
	bob1 := &fakeConn{}
	bob2 := &fakeConn{}
	registry.Join("alice", alice)
	registry.Join("bob", bob1)
	registry.Join("bob", bob2)

	svc.Send("alice", "bob", "hi")

	if store.Len() != 1 {
		t.Fatalf("store Len = %d, want 1", store.Len())
	}
	for name, conn := range map[string]*fakeConn{"alice": alice, "bob1": bob1, "bob2": bob2} {
		if len(conn.events) != 1 || conn.events[0].event != delivery.EventMessageReceived {
			t.Errorf("%s events = %v, want one message-received", name, conn.events)
		}
	}

	msg, ok := alice.events[0].payload.(Message)
	if !ok {
		t.Fatalf("payload type %T, want Message", alice.events[0].payload)
	}
	if msg.From != "alice" || msg.To != "bob" || msg.Text != "hi" {
		t.Fatalf("payload = %+v", msg)
	}
}

func TestSendInvalidIsSilentlyDropped(t *testing.T) {
	svc, registry, store := newTestService(t)

	alice := &fakeConn{}
	registry.Join("alice", alice)

	svc.Send("", "bob", "hi")
	svc.Send("alice", "", "hi")
	svc.Send("alice", "bob", "   ")

	if store.Len() != 0 {
		t.Fatalf("store Len = %d, want 0", store.Len())
	}
	if len(alice.events) != 0 {
		t.Fatalf("alice received %v, want nothing", alice.events)
	}
}

func TestSendToOfflineRecipientStillStores(t *testing.T) {
	svc, _, store := newTestService(t)

	svc.Send("alice", "bob", "offline message")

	if store.Len() != 1 {
		t.Fatalf("store Len = %d, want 1", store.Len())
	}
	if got := svc.Conversation("bob", "alice"); len(got) != 1 {
		t.Fatalf("Conversation = %d messages, want 1", len(got))
	}
}

func TestSendSelfChatDeliversOncePerSession(t *testing.T) {
	svc, registry, _ := newTestService(t)

	me := &fakeConn{}
	registry.Join("alice", me)

	svc.Send("alice", "alice", "note to self")

	if len(me.events) != 1 {
		t.Fatalf("self-chat delivered %d events, want 1", len(me.events))
	}
}

func TestDeleteForViewerNotifiesOnlyViewer(t *testing.T) {
	svc, registry, _ := newTestService(t)

	alice := &fakeConn{}
	bobPhone := &fakeConn{}
	bobLaptop := &fakeConn{}
	registry.Join("alice", alice)
	registry.Join("bob", bobPhone)
	registry.Join("bob", bobLaptop)

	svc.Send("alice", "bob", "hi")
	msg := svc.Conversation("bob", "alice")[0]

	alice.events = nil
	bobPhone.events = nil
	bobLaptop.events = nil

	if err := svc.DeleteForViewer(msg.ID, "bob"); err != nil {
		t.Fatalf("DeleteForViewer: %v", err)
	}

	for name, conn := range map[string]*fakeConn{"bobPhone": bobPhone, "bobLaptop": bobLaptop} {
		if len(conn.events) != 1 || conn.events[0].event != delivery.EventConversationStale {
			t.Errorf("%s events = %v, want one conversation-stale", name, conn.events)
		}
	}
	if len(alice.events) != 0 {
		t.Errorf("peer was notified about a delete-for-me: %v", alice.events)
	}

	if got := svc.Conversation("bob", "alice"); len(got) != 0 {
		t.Errorf("viewer still sees %d messages", len(got))
	}
	if got := svc.Conversation("alice", "bob"); len(got) != 1 {
		t.Errorf("peer view has %d messages, want 1", len(got))
	}
}

func TestDeleteForViewerErrors(t *testing.T) {
	svc, registry, _ := newTestService(t)

	bob := &fakeConn{}
	registry.Join("bob", bob)

	if err := svc.DeleteForViewer("no-such-id", "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}
	if len(bob.events) != 0 {
		t.Errorf("failed delete must not notify, got %v", bob.events)
	}

	svc.Send("alice", "bob", "hi")
	msg := svc.Conversation("bob", "alice")[0]
	if err := svc.DeleteForViewer(msg.ID, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty viewer: err = %v, want ErrValidation", err)
	}
}
