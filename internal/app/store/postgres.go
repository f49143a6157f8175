package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pairchat/internal/app/user"
	"pairchat/internal/pkg/randx"
)

// PostgresStore implements MessageStore and UserDirectory on top of a pgx connection pool.
// Concurrent appends and queries rely on Postgres for internal consistency; the
// store itself holds no mutable state.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an initialized pgx pool (see the db package for pool setup and migrations).
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Append persists a new message record. The message identifier is generated
// server-side and the timestamp is assigned by the database so that it is
// non-decreasing in insertion order; the seq column breaks equal-timestamp ties.
func (s *PostgresStore) Append(ctx context.Context, senderID, receiverID, text string) (Message, error) {
	const q = `
		INSERT INTO messages (id, sender_id, receiver_id, body)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4)
		RETURNING id::text, sender_id::text, receiver_id::text, body, created_at`

	var m Message
	err := s.pool.QueryRow(ctx, q, randx.MessageID(), senderID, receiverID, text).
		Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("append message: %w", err)
	}

	return m, nil
}

// Thread returns the full conversation between userA and userB, both directions,
// ordered by creation time ascending with insertion order as the tie-breaker.
func (s *PostgresStore) Thread(ctx context.Context, userA, userB string) ([]Message, error) {
	// The LEAST/GREATEST predicates normalize the pair so the query matches
	// idx_messages_pair regardless of argument order.
	const q = `
		SELECT id::text, sender_id::text, receiver_id::text, body, created_at
		FROM messages
		WHERE LEAST(sender_id, receiver_id) = LEAST($1::uuid, $2::uuid)
		  AND GREATEST(sender_id, receiver_id) = GREATEST($1::uuid, $2::uuid)
		ORDER BY created_at ASC, seq ASC`

	rows, err := s.pool.Query(ctx, q, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("query thread: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan thread row: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thread rows: %w", err)
	}

	return messages, nil
}

// CreateUser inserts a new account record and returns the stored user.
// Unique violations on phone or email propagate unwrapped enough for
// db.IsUniqueViolation to detect them.
func (s *PostgresStore) CreateUser(ctx context.Context, params CreateUserParams) (user.User, error) {
	const q = `
		INSERT INTO users (name, phone, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, name, phone, email`

	var u user.User
	err := s.pool.QueryRow(ctx, q, params.Name, params.Phone, params.Email, params.PasswordHash).
		Scan(&u.ID, &u.Name, &u.Phone, &u.Email)
	if err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

// GetUserByID resolves a user identity, returning ErrNotFound for unknown ids.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (user.User, error) {
	const q = `SELECT id::text, name, phone, email FROM users WHERE id = $1::uuid`

	var u user.User
	err := s.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Name, &u.Phone, &u.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return u, nil
}

// GetUserByPhone resolves a contact address, returning ErrNotFound for unknown phones.
func (s *PostgresStore) GetUserByPhone(ctx context.Context, phone string) (user.User, error) {
	const q = `SELECT id::text, name, phone, email FROM users WHERE phone = $1`

	var u user.User
	err := s.pool.QueryRow(ctx, q, phone).Scan(&u.ID, &u.Name, &u.Phone, &u.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user by phone: %w", err)
	}

	return u, nil
}

// GetUserByEmail returns the user and its password hash for login verification.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (user.User, string, error) {
	const q = `SELECT id::text, name, phone, email, password_hash FROM users WHERE email = $1`

	var u user.User
	var hash string
	err := s.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, "", ErrNotFound
		}
		return user.User{}, "", fmt.Errorf("get user by email: %w", err)
	}

	return u, hash, nil
}
