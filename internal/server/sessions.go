package server

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcanaland/feedview/internal/cardview"
	"github.com/arcanaland/feedview/internal/deck"
	"github.com/arcanaland/feedview/internal/feed"
)

const sessionCookie = "feedview_session"

// Session limits used when Options leaves them zero
const (
	DefaultMaxSessions = 1024
	DefaultSessionTTL  = 30 * time.Minute
)

// session is one browser's card state
type session struct {
	mu     sync.Mutex
	view   *cardview.View
	loaded bool

	lastSeen time.Time // guarded by sessionStore.mu
}

// sessionStore keeps at most limit sessions and forgets any idle for ttl
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	limit    int
	ttl      time.Duration
	now      func() time.Time
}

func newSessionStore(limit int, ttl time.Duration) *sessionStore {
	if limit <= 0 {
		limit = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionStore{
		sessions: make(map[string]*session),
		limit:    limit,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (st *sessionStore) get(id string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if now.Sub(sess.lastSeen) > st.ttl {
		delete(st.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

func (st *sessionStore) create() (string, *session) {
	id := uuid.NewString()
	sess := &session{view: cardview.New(nil, 0, nil)}

	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	st.prune(now)
	for len(st.sessions) >= st.limit {
		st.evictOldest()
	}
	sess.lastSeen = now
	st.sessions[id] = sess
	return id, sess
}

// prune drops sessions idle for longer than ttl. Callers hold st.mu.
func (st *sessionStore) prune(now time.Time) {
	for id, sess := range st.sessions {
		if now.Sub(sess.lastSeen) > st.ttl {
			delete(st.sessions, id)
		}
	}
}

// evictOldest drops the least recently seen session. Callers hold st.mu.
func (st *sessionStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, sess := range st.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	delete(st.sessions, oldestID)
}

func (st *sessionStore) count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// session returns the caller's session, starting a new one if the cookie
// is missing or unknown
func (s *Server) session(c *gin.Context) *session {
	if id, err := c.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions.get(id); ok {
			return sess
		}
	}
	id, sess := s.sessions.create()
	c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	s.logger.Debug("session started", zap.String("session", id), zap.Int("sessions", s.sessions.count()))
	return sess
}

// ensureCards draws the session's cards on its first successful load.
// Callers hold sess.mu.
func (sess *session) ensureCards(ctx context.Context, f feed.JSONFetcher, url string) error {
	if sess.loaded {
		return nil
	}
	cards, err := deck.Draw(ctx, f, url)
	if err != nil {
		return err
	}
	sess.view.SetCards(cards)
	sess.loaded = true
	return nil
}
