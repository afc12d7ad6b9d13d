// Package session implements sign-in state: a credential check at login, a
// persisted snapshot per session, and rehydration from that snapshot.
// Snapshots never expire and are not re-validated on restore.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is the persisted snapshot of one sign-in.
type Session struct {
	Token     string      `json:"token"`
	User      domain.User `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}

func (s Session) State() State {
	if s.Token == "" {
		return Anonymous
	}
	return Authenticated
}

// SnapshotStore persists session snapshots by token.
type SnapshotStore interface {
	Save(ctx context.Context, s Session) error
	// Load returns false when no snapshot exists for token.
	Load(ctx context.Context, token string) (Session, bool, error)
	Delete(ctx context.Context, token string) error
	// Clear removes every snapshot.
	Clear(ctx context.Context) error
}

// UserFinder resolves the account behind a login email.
type UserFinder interface {
	ListUsers(ctx context.Context, f store.UserFilter) ([]domain.User, error)
}

type Manager struct {
	creds     *Credentials
	users     UserFinder
	snapshots SnapshotStore
	now       func() time.Time
}

func NewManager(creds *Credentials, users UserFinder, snapshots SnapshotStore) *Manager {
	return &Manager{creds: creds, users: users, snapshots: snapshots, now: domain.Now}
}

// Login checks the password against the credential table and, on a match,
// persists a new snapshot for the user record with that email. Any failure
// yields false and persists nothing.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, bool) {
	log := zerolog.Ctx(ctx)

	if !m.creds.Match(email, password) {
		log.Info().Str("email", email).Msg("login rejected")
		return Session{}, false
	}
	users, err := m.users.ListUsers(ctx, store.UserFilter{Email: email})
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("login user lookup failed")
		return Session{}, false
	}
	if len(users) == 0 {
		log.Warn().Str("email", email).Msg("login credentials match but no user record exists")
		return Session{}, false
	}

	s := Session{Token: uuid.NewString(), User: users[0], CreatedAt: m.now()}
	if err := m.snapshots.Save(ctx, s); err != nil {
		log.Error().Err(err).Msg("persist session failed")
		return Session{}, false
	}
	return s, true
}

// Logout drops the snapshot for token. Unknown tokens are not an error.
func (m *Manager) Logout(ctx context.Context, token string) error {
	return m.snapshots.Delete(ctx, token)
}

// Restore rehydrates the snapshot for token as it was saved.
func (m *Manager) Restore(ctx context.Context, token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	s, ok, err := m.snapshots.Load(ctx, token)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("restore session failed")
		return Session{}, false
	}
	return s, ok
}

// ClearAll signs every session out.
func (m *Manager) ClearAll(ctx context.Context) error {
	return m.snapshots.Clear(ctx)
}

// Credentials exposes the table, e.g. for seeding user records.
func (m *Manager) Credentials() *Credentials { return m.creds }
