package server

import (
	"testing"

	"github.com/df-mc/dragonfly/server/session"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol/login"
)

type stubConn struct {
	session.Conn
	id     string
	closed bool
}

func (c *stubConn) IdentityData() login.IdentityData {
	return login.IdentityData{Identity: c.id, DisplayName: "Test"}
}

func (c *stubConn) Close() error {
	c.closed = true
	return nil
}

type stubListener struct {
	next         []session.Conn
	disconnected []session.Conn
}

func (l *stubListener) Accept() (session.Conn, error) {
	conn := l.next[0]
	l.next = l.next[1:]
	return conn, nil
}

func (l *stubListener) Disconnect(conn session.Conn, _ string) error {
	l.disconnected = append(l.disconnected, conn)
	return nil
}

func (l *stubListener) Close() error { return nil }

func TestConnRegistryTracksAcceptedConnections(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	raw := &stubConn{id: id.String()}
	inner := &stubListener{next: []session.Conn{raw}}
	reg := NewConnRegistry()
	l := reg.Listener(inner)

	conn, err := l.Accept()
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if _, ok := reg.Conn(id); !ok {
		t.Fatalf("accepted connection is not tracked")
	}

	if err := l.Disconnect(conn, "bye"); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	if len(inner.disconnected) != 1 || inner.disconnected[0] != raw {
		t.Fatalf("wrapped listener did not receive the original connection")
	}
	if _, ok := reg.Conn(id); ok {
		t.Fatalf("connection still tracked after disconnect")
	}
}

func TestConnRegistryForgetsClosedConnections(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	raw := &stubConn{id: id.String()}
	reg := NewConnRegistry()
	conn, err := reg.Listener(&stubListener{next: []session.Conn{raw}}).Accept()
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !raw.closed {
		t.Fatalf("underlying connection was not closed")
	}
	if reg.Len() != 0 {
		t.Fatalf("registry holds %d connections after close, want 0", reg.Len())
	}
}

func TestConnRegistryIgnoresInvalidIdentity(t *testing.T) {
	t.Parallel()

	raw := &stubConn{id: "not-a-uuid"}
	reg := NewConnRegistry()
	conn, err := reg.Listener(&stubListener{next: []session.Conn{raw}}).Accept()
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if conn != session.Conn(raw) {
		t.Fatalf("connection with invalid identity was wrapped")
	}
	if reg.Len() != 0 {
		t.Fatalf("registry tracked a connection with invalid identity")
	}
}
