package store

import (
	"sync"
	"time"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single utterance in a conversation.
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Pair groups a user turn with the assistant turn that answered it.
type Pair struct {
	User      Turn `json:"user"`
	Assistant Turn `json:"assistant"`
}

// History is the bounded transcript of one session. Turns alternate
// user/assistant starting with user; the send flow appends the user turn and
// the assistant turn together, so the transcript has even length at rest.
// Safe for concurrent use.
type History struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewHistory() *History {
	return &History{turns: make([]Turn, 0)}
}

func (h *History) Append(turn Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turn)
}

// Truncate keeps only the newest maxPairs user/assistant pairs. It runs after
// every assistant append, so eviction always drops whole pairs from the front
// and never splits a pair.
func (h *History) Truncate(maxPairs int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	limit := maxPairs * 2
	if limit <= 0 || len(h.turns) <= limit {
		return
	}
	kept := make([]Turn, limit)
	copy(kept, h.turns[len(h.turns)-limit:])
	h.turns = kept
}

// Snapshot returns a copy of the transcript in chronological order. Later
// appends do not show through.
func (h *History) Snapshot() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Pairs groups the transcript into user/assistant pairs, oldest first. A
// trailing user turn that has no answer yet is left out.
func (h *History) Pairs() []Pair {
	h.mu.RLock()
	defer h.mu.RUnlock()

	pairs := make([]Pair, 0, len(h.turns)/2)
	for i := 0; i+1 < len(h.turns); i += 2 {
		pairs = append(pairs, Pair{User: h.turns[i], Assistant: h.turns[i+1]})
	}
	return pairs
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}
