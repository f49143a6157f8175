/*
Package randx provides functions for generating unique identifiers used across the server.

It covers server-assigned message identifiers, per-socket connection identifiers,
and validation of externally supplied user identifiers.
*/
package randx

import (
	"github.com/google/uuid"
)

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// ConnectionID generates a unique identifier for a single WebSocket connection.
// Presence entries are keyed to this identifier so that a disconnect of a stale
// connection can never clear a newer connection's entry.
func ConnectionID() string {
	return uuid.New().String()
}

// IsValidUserID checks whether the given string is a well-formed user identifier (UUID).
func IsValidUserID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
