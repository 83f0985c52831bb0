package server

import (
	"sync"

	dragonfly "github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/session"
	"github.com/dm-vev/harotorch/server/plugin"
	"github.com/google/uuid"
)

// ConnRegistry keeps track of the network connection of every player that
// joined through a listener wrapped by Wrap. Plugins use it to send packets to
// a single player.
type ConnRegistry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*trackedConn
}

// NewConnRegistry returns an empty ConnRegistry.
func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{conns: make(map[uuid.UUID]*trackedConn)}
}

// Conn returns the connection of the player with the UUID passed.
func (r *ConnRegistry) Conn(id uuid.UUID) (plugin.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return conn, true
}

// Len returns the number of tracked connections.
func (r *ConnRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Wrap replaces every listener factory of conf so that connections accepted by
// the listeners are tracked by the registry.
func (r *ConnRegistry) Wrap(conf *dragonfly.Config) {
	for i, listen := range conf.Listeners {
		conf.Listeners[i] = func(c dragonfly.Config) (dragonfly.Listener, error) {
			l, err := listen(c)
			if err != nil {
				return nil, err
			}
			return r.Listener(l), nil
		}
	}
}

// Listener wraps l so that the connections it accepts are tracked.
func (r *ConnRegistry) Listener(l dragonfly.Listener) dragonfly.Listener {
	return &trackingListener{Listener: l, conns: r}
}

func (r *ConnRegistry) track(conn session.Conn) session.Conn {
	id, err := uuid.Parse(conn.IdentityData().Identity)
	if err != nil {
		return conn
	}
	tc := &trackedConn{Conn: conn, id: id, conns: r}
	r.mu.Lock()
	r.conns[id] = tc
	r.mu.Unlock()
	return tc
}

func (r *ConnRegistry) forget(tc *trackedConn) {
	r.mu.Lock()
	if current, ok := r.conns[tc.id]; ok && current == tc {
		delete(r.conns, tc.id)
	}
	r.mu.Unlock()
}

// trackingListener registers every accepted connection with a ConnRegistry.
type trackingListener struct {
	dragonfly.Listener
	conns *ConnRegistry
}

// Accept ...
func (l *trackingListener) Accept() (session.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return l.conns.track(conn), nil
}

// Disconnect unwraps conn before passing it to the wrapped listener, which
// expects the connection type it produced itself.
func (l *trackingListener) Disconnect(conn session.Conn, reason string) error {
	if tc, ok := conn.(*trackedConn); ok {
		l.conns.forget(tc)
		conn = tc.Conn
	}
	return l.Listener.Disconnect(conn, reason)
}

// trackedConn is a session.Conn that removes itself from its registry once
// closed.
type trackedConn struct {
	session.Conn
	id    uuid.UUID
	conns *ConnRegistry
	once  sync.Once
}

// Close ...
func (c *trackedConn) Close() error {
	c.once.Do(func() { c.conns.forget(c) })
	return c.Conn.Close()
}
