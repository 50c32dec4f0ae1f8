// Package session keeps one evaluation pipeline per client. The table is
// bounded and idle sessions expire; nothing outlives the process.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"ideaeval/internal/orchestrator"
)

// Factory builds the pipeline for a new session.
type Factory func(id string) (*orchestrator.Orchestrator, error)

type Session struct {
	ID        string
	Pipeline  *orchestrator.Orchestrator
	CreatedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// Context lives as long as the session; background runs are bound to it so
// evicting a session stops its in-flight calls.
func (s *Session) Context() context.Context { return s.ctx }

type Store struct {
	cache   *expirable.LRU[string, *Session]
	factory Factory
	log     *log.Logger
}

// New creates a table holding at most max sessions, each dropped after ttl
// without access. Provide a custom logger or nil to use log.Default().
func New(max int, ttl time.Duration, factory Factory, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{factory: factory, log: logger}
	s.cache = expirable.NewLRU[string, *Session](max, s.onEvict, ttl)
	return s
}

func (s *Store) onEvict(id string, sess *Session) {
	sess.cancel()
	s.log.Printf("session %s: evicted", id)
}

func (s *Store) Create() (*Session, error) {
	id := uuid.NewString()
	p, err := s.factory(id)
	if err != nil {
		return nil, fmt.Errorf("session: create pipeline: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{ID: id, Pipeline: p, CreatedAt: time.Now(), ctx: ctx, cancel: cancel}
	s.cache.Add(id, sess)
	return sess, nil
}

// Get returns a live session and restarts its expiry clock.
func (s *Store) Get(id string) (*Session, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	s.cache.Add(id, sess)
	return sess, true
}

// Remove drops a session and cancels its context.
func (s *Store) Remove(id string) bool {
	return s.cache.Remove(strings.TrimSpace(id))
}

func (s *Store) Len() int { return s.cache.Len() }

// Close drops every session.
func (s *Store) Close() {
	s.cache.Purge()
}
