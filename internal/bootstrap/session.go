package bootstrap

import (
	"github.com/redis/go-redis/v9"

	"github.com/biamino/biamino-backend/config"
	"github.com/biamino/biamino-backend/internal/session"
	"github.com/biamino/biamino-backend/internal/store"
)

// Credentials returns the table from CREDENTIALS_FILE, or the built-in
// accounts when no file is configured.
func Credentials(cfg config.SessionConfig) (*session.Credentials, error) {
	if cfg.CredentialsFile == "" {
		return session.DefaultCredentials(), nil
	}
	return session.LoadCredentials(cfg.CredentialsFile)
}

// NewSessionManager keeps snapshots in Redis under the configured prefix
// regardless of which store backend holds the entities.
func NewSessionManager(cfg *config.Config, users store.UserStore, rdb *redis.Client) (*session.Manager, error) {
	creds, err := Credentials(cfg.Session)
	if err != nil {
		return nil, err
	}
	return session.NewManager(creds, users, session.NewRedisSnapshots(rdb, cfg.Redis.Prefix)), nil
}
