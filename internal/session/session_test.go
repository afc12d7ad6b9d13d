package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/session"
	"github.com/biamino/biamino-backend/internal/store"
	"github.com/biamino/biamino-backend/internal/store/kv"
)

func setupManager(t *testing.T) (*session.Manager, *miniredis.Miniredis, *kv.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := kv.New(client)
	ctx := context.Background()
	for _, c := range session.DefaultCredentials().All() {
		_, err := users.CreateUser(ctx, domain.CreateUserRequest{Email: c.Email, Role: c.Role})
		require.NoError(t, err)
	}
	m := session.NewManager(session.DefaultCredentials(), users, session.NewRedisSnapshots(client, "biamino"))
	return m, mr, users
}

func TestManager_Login(t *testing.T) {
	m, mr, _ := setupManager(t)
	ctx := context.Background()

	t.Run("admin credentials yield admin role", func(t *testing.T) {
		s, ok := m.Login(ctx, "admin@biamino.com", "admin123")
		require.True(t, ok)
		assert.Equal(t, domain.RoleAdmin, s.User.Role)
		assert.Equal(t, session.Authenticated, s.State())
		key := "biamino:session:" + s.Token
		assert.True(t, mr.Exists(key))
		assert.Zero(t, mr.TTL(key))
	})

	t.Run("wrong password fails and persists nothing", func(t *testing.T) {
		before := len(mr.Keys())
		s, ok := m.Login(ctx, "admin@biamino.com", "admin124")
		assert.False(t, ok)
		assert.Equal(t, session.Anonymous, s.State())
		assert.Len(t, mr.Keys(), before)
	})

	t.Run("unknown email fails", func(t *testing.T) {
		_, ok := m.Login(ctx, "nobody@biamino.com", "admin123")
		assert.False(t, ok)
	})

	t.Run("repeated failures are not throttled", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			_, ok := m.Login(ctx, "team@biamino.com", "nope")
			require.False(t, ok)
		}
		_, ok := m.Login(ctx, "team@biamino.com", "team123")
		assert.True(t, ok)
	})
}

func TestManager_LoginWithoutUserRecord(t *testing.T) {
	m, _, users := setupManager(t)
	ctx := context.Background()

	us, err := users.ListUsers(ctx, store.UserFilter{Email: "user@biamino.com"})
	require.NoError(t, err)
	require.Len(t, us, 1)
	require.NoError(t, users.DeleteUser(ctx, us[0].ID))

	_, ok := m.Login(ctx, "user@biamino.com", "user123")
	assert.False(t, ok)
}

func TestManager_RestoreAndLogout(t *testing.T) {
	m, _, _ := setupManager(t)
	ctx := context.Background()

	s, ok := m.Login(ctx, "team@biamino.com", "team123")
	require.True(t, ok)

	restored, ok := m.Restore(ctx, s.Token)
	require.True(t, ok)
	assert.Equal(t, s.User.ID, restored.User.ID)
	assert.Equal(t, domain.RoleTeam, restored.User.Role)

	require.NoError(t, m.Logout(ctx, s.Token))
	_, ok = m.Restore(ctx, s.Token)
	assert.False(t, ok)

	_, ok = m.Restore(ctx, "")
	assert.False(t, ok)
}

func TestManager_RestoreDoesNotRevalidate(t *testing.T) {
	m, _, users := setupManager(t)
	ctx := context.Background()

	s, ok := m.Login(ctx, "user@biamino.com", "user123")
	require.True(t, ok)
	require.NoError(t, users.DeleteUser(ctx, s.User.ID))

	restored, ok := m.Restore(ctx, s.Token)
	require.True(t, ok)
	assert.Equal(t, "user@biamino.com", restored.User.Email)
}

func TestManager_ClearAll(t *testing.T) {
	m, mr, _ := setupManager(t)
	ctx := context.Background()

	a, _ := m.Login(ctx, "admin@biamino.com", "admin123")
	b, _ := m.Login(ctx, "team@biamino.com", "team123")
	require.NoError(t, m.ClearAll(ctx))

	_, ok := m.Restore(ctx, a.Token)
	assert.False(t, ok)
	_, ok = m.Restore(ctx, b.Token)
	assert.False(t, ok)
	assert.True(t, mr.Exists("biamino:users"))
}

type failingUsers struct{}

func (failingUsers) ListUsers(context.Context, store.UserFilter) ([]domain.User, error) {
	return nil, errors.New("store unreachable")
}

func TestManager_StoreFailureIsAFailedLogin(t *testing.T) {
	snapshots := session.NewMemorySnapshots()
	m := session.NewManager(session.DefaultCredentials(), failingUsers{}, snapshots)

	_, ok := m.Login(context.Background(), "admin@biamino.com", "admin123")
	assert.False(t, ok)
}

func TestMemorySnapshots(t *testing.T) {
	ctx := context.Background()
	m := session.NewMemorySnapshots()
	s := session.Session{Token: "t1", User: domain.User{ID: "u1", Role: domain.RoleUser}}

	require.NoError(t, m.Save(ctx, s))
	got, ok, err := m.Load(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", got.User.ID)

	require.NoError(t, m.Delete(ctx, "t1"))
	_, ok, err = m.Load(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads yaml table", func(t *testing.T) {
		path := filepath.Join(dir, "creds.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`credentials:
  - email: ops@biamino.com
    password: hunter2
    role: team
`), 0o600))

		c, err := session.LoadCredentials(path)
		require.NoError(t, err)
		assert.True(t, c.Match("ops@biamino.com", "hunter2"))
		assert.False(t, c.Match("ops@biamino.com", "Hunter2"))
		assert.False(t, c.Match("admin@biamino.com", "admin123"))
		require.Len(t, c.All(), 1)
		assert.Equal(t, domain.RoleTeam, c.All()[0].Role)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`credentials:
  - email: x@biamino.com
    password: x
    role: owner
`), 0o600))

		_, err := session.LoadCredentials(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := session.LoadCredentials(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})
}
