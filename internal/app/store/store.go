/*
Package store defines the durable persistence contracts of the messaging system:
the append-only message store and the user directory.

The interfaces are deliberately narrow so that the delivery path and the HTTP
handlers depend on behavior, not on the Postgres implementation, and so that
tests can substitute in-memory fakes.
*/
package store

import (
	"context"
	"errors"
	"time"

	"pairchat/internal/app/user"
)

// ErrNotFound is returned when a requested record does not exist.
// Callers must treat it as an expected outcome, not a storage failure.
var ErrNotFound = errors.New("store: record not found")

// Message is the immutable, durable record of a single text exchanged between two users.
// The identifier and creation timestamp are assigned at persistence time; there is no
// edit or delete path.
type Message struct {
	// ID is the server-assigned unique identifier of the message.
	ID string `json:"id"`

	// SenderID is the identity of the user who sent the message.
	SenderID string `json:"senderId"`

	// ReceiverID is the identity of the user the message is addressed to.
	ReceiverID string `json:"receiverId"`

	// Text is the opaque message payload.
	Text string `json:"text"`

	// CreatedAt is the persistence timestamp, non-decreasing in insertion order.
	CreatedAt time.Time `json:"createdAt"`
}

// MessageStore is the append-only persistence layer for messages.
type MessageStore interface {
	// Append persists a new message, assigning its identifier and timestamp.
	// Any returned error means the message was not stored and is lost; the
	// caller does not retry.
	Append(ctx context.Context, senderID, receiverID, text string) (Message, error)

	// Thread returns every message exchanged between userA and userB, in either
	// direction, ordered by creation time ascending with ties broken by
	// insertion order. The result is a consistent snapshot as of call time.
	Thread(ctx context.Context, userA, userB string) ([]Message, error)
}

// CreateUserParams carries the validated fields for a new account.
type CreateUserParams struct {
	Name         string
	Phone        string
	Email        string
	PasswordHash string
}

// UserDirectory is the account record store consumed by the core.
// The core only reads verified identities from it; credential verification
// itself happens in the auth handlers.
type UserDirectory interface {
	// CreateUser inserts a new account record. A duplicate phone or email
	// yields a unique-violation error (see db.IsUniqueViolation).
	CreateUser(ctx context.Context, params CreateUserParams) (user.User, error)

	// GetUserByID resolves a user identity. Returns ErrNotFound for unknown ids.
	GetUserByID(ctx context.Context, id string) (user.User, error)

	// GetUserByPhone resolves a contact address to a user. Returns ErrNotFound
	// for unknown phone numbers.
	GetUserByPhone(ctx context.Context, phone string) (user.User, error)

	// GetUserByEmail returns the user and its password hash for credential
	// verification during login. Returns ErrNotFound for unknown emails.
	GetUserByEmail(ctx context.Context, email string) (user.User, string, error)
}
