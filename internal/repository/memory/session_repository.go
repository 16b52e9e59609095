package memory

import (
	"time"

	"presto-copilot-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository is the in-memory session registry. Idle sessions expire
// after the TTL and take their conversation with them; every Save slides the
// expiration forward.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl, sweepInterval time.Duration) *SessionRepository {
	return &SessionRepository{
		cache: cache.New(ttl, sweepInterval),
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// All returns the live sessions in no particular order.
func (r *SessionRepository) All() []*store.Session {
	items := r.cache.Items()
	sessions := make([]*store.Session, 0, len(items))
	for _, item := range items {
		sessions = append(sessions, item.Object.(*store.Session))
	}
	return sessions
}
