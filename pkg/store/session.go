package store

import (
	"sync"
	"time"
)

// Selection is the store/model pair a session is pointed at.
type Selection struct {
	StoreKey  string // catalog key the client selected
	StoreName string // resolved fileSearchStores resource name
	Model     string
}

// Session is the per-conversation state held in the session registry. It is
// process-local; when the registry evicts it the conversation is gone.
type Session struct {
	ID        string
	CreatedAt time.Time
	History   *History

	mu            sync.RWMutex
	selection     Selection
	lastRequestAt time.Time

	// gate enforces one in-flight query per session.
	gate sync.Mutex
}

func NewSession(id string, sel Selection) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		History:   NewHistory(),
		selection: sel,
	}
}

func (s *Session) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Reconfigure points the session at a different store or model. The history
// is kept; a conversation survives switching its grounding.
func (s *Session) Reconfigure(sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel
}

func (s *Session) LastRequestAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRequestAt
}

func (s *Session) SetLastRequestAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRequestAt = t
}

// BeginQuery marks the session busy. It reports false when another query is
// already in flight; the caller must reject instead of queueing.
func (s *Session) BeginQuery() bool {
	return s.gate.TryLock()
}

// EndQuery releases the mark taken by BeginQuery.
func (s *Session) EndQuery() {
	s.gate.Unlock()
}
