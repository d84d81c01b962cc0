package delivery

import (
	"errors"
	"testing"

	"github.com/reelchat/reelchat/internal/identity"
)

type recordedEvent struct {
	event   string
	payload any
}

type fakeConn struct {
	events []recordedEvent
	broken bool
}

func (c *fakeConn) Send(event string, payload any) error {
	if c.broken {
		return errors.New("connection closed")
	}
	c.events = append(c.events, recordedEvent{event: event, payload: payload})
	return nil
}

func TestDeliverReachesAllConnections(t *testing.T) {
	reg := identity.NewRegistry()
	router := NewRouter(reg, nil, nil)

	c1 := &fakeConn{}
	c2 := &fakeConn{}
	reg.Join("bob", c1)
	reg.Join("bob", c2)

	n := router.Deliver("bob", "message-received", map[string]string{"text": "hi"})
	if n != 2 {
		t.Fatalf("Deliver = %d, want 2", n)
	}
	for i, c := range []*fakeConn{c1, c2} {
		if len(c.events) != 1 || c.events[0].event != "message-received" {
			t.Fatalf("conn %d events = %v", i, c.events)
		}
	}
}

func TestDeliverToOfflineIdentity(t *testing.T) {
	reg := identity.NewRegistry()
	router := NewRouter(reg, nil, nil)

	if n := router.Deliver("nobody", "call-offer", nil); n != 0 {
		t.Fatalf("Deliver to offline identity = %d, want 0", n)
	}
}

func TestDeliverEmptyIdentity(t *testing.T) {
	reg := identity.NewRegistry()
	router := NewRouter(reg, nil, nil)

	if n := router.Deliver("", "call-offer", nil); n != 0 {
		t.Fatalf("Deliver to empty identity = %d, want 0", n)
	}
}

func TestDeliverSkipsBrokenConnections(t *testing.T) {
	reg := identity.NewRegistry()
	router := NewRouter(reg, nil, nil)

	healthy := &fakeConn{}
	broken := &fakeConn{broken: true}
	reg.Join("bob", healthy)
	reg.Join("bob", broken)

	if n := router.Deliver("bob", "call-end", nil); n != 1 {
		t.Fatalf("Deliver = %d, want 1 (broken conn counts as offline)", n)
	}
	if len(healthy.events) != 1 {
		t.Fatalf("healthy conn events = %v", healthy.events)
	}
}

func TestDeliverToMany(t *testing.T) {
	reg := identity.NewRegistry()
	router := NewRouter(reg, nil, nil)

	a := &fakeConn{}
	b1 := &fakeConn{}
	b2 := &fakeConn{}
	reg.Join("alice", a)
	reg.Join("bob", b1)
	reg.Join("bob", b2)

	n := router.DeliverToMany([]string{"alice", "bob", "ghost"}, "message-received", nil)
	if n != 3 {
		t.Fatalf("DeliverToMany = %d, want 3", n)
	}
}
