package identity

import (
	"sort"
	"testing"
)

type fakeConn struct {
	name string
}

func (c *fakeConn) Send(event string, payload any) error { return nil }

func resolveNames(r *Registry, id string) []string {
	conns := r.Resolve(id)
	names := make([]string, 0, len(conns))
	for _, c := range conns {
		names = append(names, c.(*fakeConn).name)
	}
	sort.Strings(names)
	return names
}

func TestJoinAndResolve(t *testing.T) {
	r := NewRegistry()
	a1 := &fakeConn{name: "a1"}
	a2 := &fakeConn{name: "a2"}

	r.Join("alice", a1)
	r.Join("alice", a2)

	got := resolveNames(r, "alice")
	if len(got) != 2 || got[0] != "a1" || got[1] != "a2" {
		t.Fatalf("Resolve(alice) = %v, want both connections", got)
	}
}

func TestJoinEmptyIdentityIsNoOp(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{name: "c"}

	r.Join("", c)

	if _, ok := r.IdentityOf(c); ok {
		t.Fatalf("empty identity must not bind")
	}
	if ids, conns := r.Counts(); ids != 0 || conns != 0 {
		t.Fatalf("Counts = (%d, %d), want (0, 0)", ids, conns)
	}
}

func TestJoinIsIdempotentPerConn(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{name: "c"}

	r.Join("alice", c)
	r.Join("alice", c)

	if got := resolveNames(r, "alice"); len(got) != 1 {
		t.Fatalf("Resolve(alice) = %v, want one connection", got)
	}
}

func TestRejoinEvictsPriorBinding(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{name: "c"}

	r.Join("alice", c)
	r.Join("bob", c)

	if got := r.Resolve("alice"); len(got) != 0 {
		t.Fatalf("alice still has %d connections after rejoin", len(got))
	}
	if got := resolveNames(r, "bob"); len(got) != 1 {
		t.Fatalf("Resolve(bob) = %v, want the rebound connection", got)
	}
	if id, ok := r.IdentityOf(c); !ok || id != "bob" {
		t.Fatalf("IdentityOf = (%q, %v), want bob", id, ok)
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistry()
	a1 := &fakeConn{name: "a1"}
	a2 := &fakeConn{name: "a2"}
	r.Join("alice", a1)
	r.Join("alice", a2)

	r.Remove(a1)

	if got := resolveNames(r, "alice"); len(got) != 1 || got[0] != "a2" {
		t.Fatalf("Resolve(alice) = %v, want only a2", got)
	}

	r.Remove(a2)
	r.Remove(a2) // idempotent

	if got := r.Resolve("alice"); got != nil {
		t.Fatalf("Resolve(alice) = %v, want nil", got)
	}
	if ids, conns := r.Counts(); ids != 0 || conns != 0 {
		t.Fatalf("Counts = (%d, %d), want (0, 0)", ids, conns)
	}
}

func TestResolveUnknownIdentity(t *testing.T) {
	r := NewRegistry()
	if got := r.Resolve("ghost"); got != nil {
		t.Fatalf("Resolve(ghost) = %v, want nil", got)
	}
}
