package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// CacheProvider is the subset of go-cache the store relies on.
type CacheProvider interface {
	Set(k string, item interface{}, d time.Duration)
	Get(k string) (item interface{}, found bool)
	Delete(k string)
	ItemCount() int
}

// Store keeps sessions in memory and forgets them after ttl of inactivity.
type Store struct {
	cache CacheProvider
	ttl   time.Duration
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewStore(ttl, cleanupInterval time.Duration, log logrus.FieldLogger) *Store {
	c := cache.New(ttl, cleanupInterval)
	c.OnEvicted(func(token string, _ interface{}) {
		log.WithField("session", shortToken(token)).Debug("session expired")
	})
	return NewStoreWithCache(c, ttl, log, time.Now)
}

func NewStoreWithCache(c CacheProvider, ttl time.Duration, log logrus.FieldLogger, now func() time.Time) *Store {
	return &Store{
		cache: c,
		ttl:   ttl,
		log:   log,
		now:   now,
	}
}

// Create starts a new unauthenticated session.
func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString(), s.now)
	s.cache.Set(sess.Token, sess, s.ttl)
	s.log.WithField("session", shortToken(sess.Token)).Debug("session created")
	return sess
}

// Get returns the session for token and extends its lifetime.
func (s *Store) Get(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	obj, found := s.cache.Get(token)
	if !found {
		return nil, false
	}
	sess, ok := obj.(*Session)
	if !ok {
		s.log.Errorf("invalid cache entry: expected *Session, got %T", obj)
		return nil, false
	}
	s.cache.Set(token, sess, s.ttl)
	return sess, true
}

// Delete ends the session.
func (s *Store) Delete(token string) {
	if sess, ok := s.Get(token); ok {
		sess.Logout()
	}
	s.cache.Delete(token)
	s.log.WithField("session", shortToken(token)).Debug("session deleted")
}

func (s *Store) Count() int {
	return s.cache.ItemCount()
}

func shortToken(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
