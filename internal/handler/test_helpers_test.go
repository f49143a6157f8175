package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"pairchat/internal/app/chat"
	"pairchat/internal/app/store"
	"pairchat/internal/app/user"
	"pairchat/internal/configs"
	"pairchat/internal/pkg/randx"
)

const testJWTSecret = "handler-test-secret"

// memStore is an in-memory stand-in for the Postgres store, implementing both
// store.MessageStore and store.UserDirectory.
type memStore struct {
	mu       sync.Mutex
	users    []memUser
	messages []store.Message

	// failAppend simulates a storage outage on the write path.
	failAppend bool
}

type memUser struct {
	user.User
	passwordHash string
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) CreateUser(_ context.Context, params store.CreateUserParams) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Phone == params.Phone || existing.Email == params.Email {
			// The real store surfaces duplicates as a Postgres unique violation.
			return user.User{}, &pgconn.PgError{Code: "23505"}
		}
	}

	u := user.User{
		ID:    randx.ConnectionID(),
		Name:  params.Name,
		Phone: params.Phone,
		Email: params.Email,
	}
	m.users = append(m.users, memUser{User: u, passwordHash: params.PasswordHash})
	return u, nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			return u.User, nil
		}
	}
	return user.User{}, store.ErrNotFound
}

func (m *memStore) GetUserByPhone(_ context.Context, phone string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Phone == phone {
			return u.User, nil
		}
	}
	return user.User{}, store.ErrNotFound
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (user.User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return u.User, u.passwordHash, nil
		}
	}
	return user.User{}, "", store.ErrNotFound
}

func (m *memStore) Append(_ context.Context, senderID, receiverID, text string) (store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAppend {
		return store.Message{}, errors.New("storage unavailable")
	}

	msg := store.Message{
		ID:         randx.MessageID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  time.Now(),
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memStore) Thread(_ context.Context, userA, userB string) ([]store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Messages are stored in insertion order with non-decreasing timestamps,
	// so filtering preserves the required ordering.
	thread := make([]store.Message, 0)
	for _, msg := range m.messages {
		if (msg.SenderID == userA && msg.ReceiverID == userB) ||
			(msg.SenderID == userB && msg.ReceiverID == userA) {
			thread = append(thread, msg)
		}
	}
	return thread, nil
}

// mustAddUser seeds an account directly into the store.
func (m *memStore) mustAddUser(t *testing.T, name, phone, email string) user.User {
	t.Helper()

	u, err := m.CreateUser(context.Background(), store.CreateUserParams{
		Name:         name,
		Phone:        phone,
		Email:        email,
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

// newTestServer wires a full router over in-memory stores and returns the
// pieces tests poke at directly.
func newTestServer(t *testing.T) (*httptest.Server, *memStore, *chat.MemoryRegistry) {
	t.Helper()

	st := newMemStore()
	presence := chat.NewMemoryRegistry()
	delivery := chat.NewDelivery(st, st, presence)

	deps := &AppDeps{
		Config: &configs.AppConfig{
			Environment: "development",
			JWTSecret:   testJWTSecret,
		},
		Presence: presence,
		Delivery: delivery,
		Users:    st,
		Messages: st,
	}

	srv := httptest.NewServer(Router(deps))
	t.Cleanup(srv.Close)

	return srv, st, presence
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
