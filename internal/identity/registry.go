// Package identity maps logical user identities to live connections.
//
// Identities are opaque caller-supplied strings. An identity may have any
// number of concurrent connections (multiple tabs/devices); a connection is
// bound to at most one identity at a time.
package identity

import "sync"

// Conn is a live connection handle that can receive named events.
//
// Send returning an error means the connection is effectively gone; callers
// treat it as "recipient offline".
type Conn interface {
	Send(event string, payload any) error
}

// Registry tracks identity -> connection bindings with a reverse map so
// disconnect cleanup is O(1) instead of a full scan.
type Registry struct {
	mu         sync.Mutex
	byIdentity map[string]map[Conn]struct{}
	byConn     map[Conn]string
}

func NewRegistry() *Registry {
	return &Registry{
		byIdentity: make(map[string]map[Conn]struct{}),
		byConn:     make(map[Conn]string),
	}
}

// Join binds conn to id. An empty id is a silent no-op. If conn was already
// bound to a different identity, the old binding is evicted first so a
// connection never fans in events for more than one identity.
func (r *Registry) Join(id string, conn Conn) {
	if id == "" || conn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byConn[conn]; ok {
		if prev == id {
			return
		}
		r.removeBindingLocked(prev, conn)
	}

	set, ok := r.byIdentity[id]
	if !ok {
		set = make(map[Conn]struct{})
		r.byIdentity[id] = set
	}
	set[conn] = struct{}{}
	r.byConn[conn] = id
}

// Resolve returns the live connections currently bound to id. The result is
// a snapshot; it may be stale by the time the caller sends to it.
func (r *Registry) Resolve(id string) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.byIdentity[id]
	if len(set) == 0 {
		return nil
	}
	conns := make([]Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}

// Remove drops conn's binding, if any. Idempotent.
func (r *Registry) Remove(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byConn[conn]
	if !ok {
		return
	}
	r.removeBindingLocked(id, conn)
}

// IdentityOf reports the identity conn is currently bound to.
func (r *Registry) IdentityOf(conn Conn) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byConn[conn]
	return id, ok
}

// Counts returns the number of identities with at least one live connection
// and the total number of bound connections.
func (r *Registry) Counts() (identities, conns int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byIdentity), len(r.byConn)
}

func (r *Registry) removeBindingLocked(id string, conn Conn) {
	delete(r.byConn, conn)
	set := r.byIdentity[id]
	delete(set, conn)
	if len(set) == 0 {
		delete(r.byIdentity, id)
	}
}
