// Package kv keeps every entity collection as one JSON document in Redis.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

const DefaultPrefix = "biamino"

// Store is the Redis realization of store.Store. Each collection lives
// under a single key and every mutation rewrites the whole document.
// Writes touching several collections go out in one MULTI/EXEC; nothing is
// WATCHed, so concurrent writers simply overwrite each other.
type Store struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

// WithPrefix namespaces every key, e.g. "biamino:projects".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix, now: domain.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) projectsKey() string { return s.prefix + ":projects" }
func (s *Store) commentsKey() string { return s.prefix + ":comments" }
func (s *Store) usersKey() string    { return s.prefix + ":users" }

// load decodes the document at key into out. A missing key leaves out empty.
func (s *Store) load(ctx context.Context, key string, out any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, c redis.Cmdable, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, data, 0).Err()
}

func (s *Store) loadProjects(ctx context.Context) ([]domain.Project, error) {
	ps := []domain.Project{}
	if err := s.load(ctx, s.projectsKey(), &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (s *Store) saveProjects(ctx context.Context, ps []domain.Project) error {
	if err := s.put(ctx, s.client, s.projectsKey(), ps); err != nil {
		return fmt.Errorf("save projects: %w", err)
	}
	return nil
}

func (s *Store) loadComments(ctx context.Context) ([]domain.Comment, error) {
	cs := []domain.Comment{}
	if err := s.load(ctx, s.commentsKey(), &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (s *Store) saveComments(ctx context.Context, cs []domain.Comment) error {
	if err := s.put(ctx, s.client, s.commentsKey(), stripAuthors(cs)); err != nil {
		return fmt.Errorf("save comments: %w", err)
	}
	return nil
}

func (s *Store) loadUsers(ctx context.Context) ([]domain.User, error) {
	us := []domain.User{}
	if err := s.load(ctx, s.usersKey(), &us); err != nil {
		return nil, err
	}
	return us, nil
}

// writeTogether stores several documents in one MULTI/EXEC.
func (s *Store) writeTogether(ctx context.Context, docs map[string]any) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, v := range docs {
			if err := s.put(ctx, pipe, key, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write collections: %w", err)
	}
	return nil
}

// cascadeComments drops every comment owned by the deleted parent row
// according to the store.Cascades rules. Custom fields and links are
// embedded in their project document and disappear with it.
func cascadeComments(parent, id string, cs []domain.Comment) []domain.Comment {
	for _, rule := range store.ChildrenOf(parent) {
		if rule.Child != "comments" {
			continue
		}
		cs = dropComments(cs, func(c domain.Comment) bool {
			switch rule.Column {
			case "project_id":
				return c.ProjectID == id
			case "user_id":
				return c.UserID == id
			}
			return false
		})
	}
	return cs
}

func dropComments(cs []domain.Comment, drop func(domain.Comment) bool) []domain.Comment {
	out := make([]domain.Comment, 0, len(cs))
	for _, c := range cs {
		if !drop(c) {
			out = append(out, c)
		}
	}
	return out
}

// stripAuthors removes resolved author snapshots before persisting; the
// author is always resolved from the users document at read time.
func stripAuthors(cs []domain.Comment) []domain.Comment {
	out := make([]domain.Comment, len(cs))
	for i, c := range cs {
		c.User = nil
		out[i] = c
	}
	return out
}
