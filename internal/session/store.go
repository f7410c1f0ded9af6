// Package session keeps per-user story preferences for the bot and
// guards against a user running more than one story at a time.
package session

import (
	"sync"
	"time"

	"cartoon-story-bot/internal/settings"
)

type Session struct {
	UserID       int64
	Username     string
	Settings     settings.Options
	Busy         bool
	LastActivity time.Time
}

type Options struct {
	// Defaults seed new sessions and Reset. Zero fields take
	// settings.Defaults.
	Defaults settings.Options
	// IdleTTL is how long an untouched session survives Prune.
	IdleTTL time.Duration
}

type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	defaults settings.Options
	idleTTL  time.Duration
	now      func() time.Time
}

func NewStore(opts Options) *Store {
	idleTTL := opts.IdleTTL
	if idleTTL <= 0 {
		idleTTL = 24 * time.Hour
	}

	return &Store{
		sessions: make(map[int64]*Session),
		defaults: opts.Defaults.Normalize(),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Settings returns the user's normalized preferences, creating defaults
// on first contact.
func (s *Store) Settings(userID int64, username string) settings.Options {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID, username)
	return sess.Settings
}

// Update applies fn to a copy of the user's preferences and stores the
// normalized result.
func (s *Store) Update(userID int64, username string, fn func(*settings.Options)) settings.Options {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID, username)
	opts := sess.Settings
	fn(&opts)
	sess.Settings = opts.Normalize()
	return sess.Settings
}

func (s *Store) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		sess.Settings = s.defaults
		sess.LastActivity = s.now()
	}
}

// TryBegin marks the user busy. It reports false when a story is already
// running for them.
func (s *Store) TryBegin(userID int64, username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID, username)
	if sess.Busy {
		return false
	}
	sess.Busy = true
	return true
}

func (s *Store) End(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		sess.Busy = false
		sess.LastActivity = s.now()
	}
}

// Prune drops idle sessions that are not running a story and returns how
// many were removed.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for id, sess := range s.sessions {
		if !sess.Busy && sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) Defaults() settings.Options {
	return s.defaults
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) getOrCreateLocked(userID int64, username string) *Session {
	if sess, ok := s.sessions[userID]; ok {
		if sess.Username == "" && username != "" {
			sess.Username = username
		}
		sess.LastActivity = s.now()
		return sess
	}

	sess := &Session{
		UserID:       userID,
		Username:     username,
		Settings:     s.defaults,
		LastActivity: s.now(),
	}
	s.sessions[userID] = sess
	return sess
}
