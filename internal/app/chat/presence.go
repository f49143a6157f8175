/*
Package chat contains the core logic of the presence and delivery subsystem.

This file defines the presence registry: the process-wide mapping from a user
identity to its single currently-active connection. Presence is a last-writer-wins
register, matching the single-session model: a reconnect for the same identity
silently supersedes the previous entry. The registry is the only shared mutable
structure in the core and is safe for concurrent use.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

// Conn is the registry's view of one authenticated connection.
type Conn interface {
	// ConnectionID returns the unique identifier of this connection. Clearing a
	// presence entry is conditioned on this value so a stale disconnect can
	// never erase a newer connection's entry.
	ConnectionID() string

	// Enqueue queues an outbound frame for delivery on this connection.
	// It must not block; a full queue returns an error and the frame is dropped.
	Enqueue(frame []byte) error
}

// Registry maps a user identity to its active connection.
// An absent entry means the user is not currently reachable, never an error.
type Registry interface {
	// SetActive records conn as the identity's active connection,
	// unconditionally overwriting any previous entry.
	SetActive(userID string, conn Conn)

	// ClearConnection removes the identity's entry only if it still belongs to
	// the given connection. It reports whether an entry was removed; a mismatch
	// (the identity reconnected first) is a no-op.
	ClearConnection(userID, connectionID string) bool

	// Lookup returns the identity's active connection, if any.
	Lookup(userID string) (Conn, bool)

	// Connections returns a snapshot of all active connections, used during shutdown.
	Connections() []Conn
}

// MemoryRegistry is the in-process Registry implementation. Presence state is
// deliberately not persisted: after a restart nobody is reachable until they
// reconnect.
type MemoryRegistry struct {
	// mu protects concurrent access to the active map.
	mu sync.RWMutex

	// active maps a user identity to its current connection.
	active map[string]Conn

	// structured logger with registry context.
	logger zerolog.Logger
}

// NewMemoryRegistry constructs an empty in-memory presence registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		active: make(map[string]Conn),
		logger: logx.Logger().With().Str("component", "presence").Logger(),
	}
}

// SetActive records the identity's active connection, superseding any prior one.
func (m *MemoryRegistry) SetActive(userID string, conn Conn) {
	m.mu.Lock()
	previous, had := m.active[userID]
	m.active[userID] = conn
	m.mu.Unlock()

	if had {
		m.logger.Info().
			Str("user_id", userID).
			Str("old_connection_id", previous.ConnectionID()).
			Str("new_connection_id", conn.ConnectionID()).
			Msg("Presence entry superseded by new connection.")
		return
	}

	m.logger.Info().
		Str("user_id", userID).
		Str("connection_id", conn.ConnectionID()).
		Msg("User is now online.")
}

// ClearConnection removes the entry if it still belongs to connectionID.
// A disconnect arriving after the identity already reconnected is ignored.
func (m *MemoryRegistry) ClearConnection(userID, connectionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.active[userID]
	if !ok {
		return false
	}

	if current.ConnectionID() != connectionID {
		m.logger.Info().
			Str("user_id", userID).
			Str("stale_connection_id", connectionID).
			Msg("Ignoring presence clear for stale connection.")
		return false
	}

	delete(m.active, userID)
	m.logger.Info().
		Str("user_id", userID).
		Str("connection_id", connectionID).
		Msg("User is now offline.")
	return true
}

// Lookup returns the identity's active connection, if any.
func (m *MemoryRegistry) Lookup(userID string) (Conn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conn, ok := m.active[userID]
	return conn, ok
}

// Connections returns a snapshot of every active connection.
func (m *MemoryRegistry) Connections() []Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conns := make([]Conn, 0, len(m.active))
	for _, conn := range m.active {
		conns = append(conns, conn)
	}
	return conns
}
