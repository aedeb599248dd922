package state

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/patrickmn/go-cache"
)

const DefaultSessionID = "default"

// Store keeps one Session per session id and expires idle sessions.
type Store struct {
	mu             sync.Mutex
	sessions       *cache.Cache
	maxLiveUpdates int
	release        atomic.Pointer[func(entity.CorpusHandle)]
}

func NewStore(ttl, cleanupInterval time.Duration, maxLiveUpdates int) *Store {
	s := &Store{
		sessions:       cache.New(ttl, cleanupInterval),
		maxLiveUpdates: maxLiveUpdates,
	}
	s.sessions.OnEvicted(func(_ string, v any) {
		sess, ok := v.(*Session)
		if !ok {
			return
		}
		sess.feed.close()
		if handle := sess.Corpus(); !handle.IsZero() {
			if fn := s.release.Load(); fn != nil {
				(*fn)(handle)
			}
		}
	})

	return s
}

// OnCorpusReleased registers fn to be called with the corpus of every expired session.
func (s *Store) OnCorpusReleased(fn func(entity.CorpusHandle)) {
	s.release.Store(&fn)
}

// Session returns the session for id, creating it on first use.
// Every access extends the session's lifetime.
func (s *Store) Session(id string) *Session {
	if id == "" {
		id = DefaultSessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.sessions.Get(id); ok {
		sess := v.(*Session)
		s.sessions.SetDefault(id, sess)
		return sess
	}

	sess := newSession(id, s.maxLiveUpdates)
	s.sessions.SetDefault(id, sess)
	return sess
}

// Lookup returns an existing session without creating one.
func (s *Store) Lookup(id string) (*Session, bool) {
	if id == "" {
		id = DefaultSessionID
	}
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

func (s *Store) Len() int {
	return s.sessions.ItemCount()
}

// Close drops every session and disconnects their live subscribers.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.sessions.Items() {
		if sess, ok := item.Object.(*Session); ok {
			sess.feed.close()
		}
	}
	s.sessions.Flush()
}
