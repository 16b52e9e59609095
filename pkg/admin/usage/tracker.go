package usage

import (
	"sync"
	"time"

	"presto-copilot-be/internal/pkg/logger"
)

// Counters holds the aggregate outcome numbers for one grouping.
type Counters struct {
	Queries    int `json:"queries"`
	Answered   int `json:"answered"`
	Empty      int `json:"empty"`
	Overloaded int `json:"overloaded"`
	APIError   int `json:"api_error"`
	Attempts   int `json:"attempts"`
}

func (c *Counters) add(outcome string, attempts int) {
	c.Queries++
	c.Attempts += attempts
	switch outcome {
	case "answered":
		c.Answered++
	case "empty":
		c.Empty++
	case "overloaded":
		c.Overloaded++
	case "api_error":
		c.APIError++
	}
}

// Snapshot is a point-in-time copy of the tracker for the admin dashboard.
type Snapshot struct {
	Since   time.Time           `json:"since"`
	Total   Counters            `json:"total"`
	ByStore map[string]Counters `json:"by_store"`
	ByModel map[string]Counters `json:"by_model"`
}

// Tracker aggregates query usage in memory. Counters live as long as the
// process, same as the sessions they describe.
type Tracker struct {
	logger logger.ILogger

	mu      sync.RWMutex
	since   time.Time
	total   Counters
	byStore map[string]*Counters
	byModel map[string]*Counters
}

// NewTracker creates a new usage tracker
func NewTracker(logger logger.ILogger) *Tracker {
	return &Tracker{
		logger:  logger,
		since:   time.Now(),
		byStore: make(map[string]*Counters),
		byModel: make(map[string]*Counters),
	}
}

// Record folds one completed query into the counters.
func (t *Tracker) Record(storeKey, model, outcome string, attempts int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total.add(outcome, attempts)

	sc, ok := t.byStore[storeKey]
	if !ok {
		sc = &Counters{}
		t.byStore[storeKey] = sc
	}
	sc.add(outcome, attempts)

	mc, ok := t.byModel[model]
	if !ok {
		mc = &Counters{}
		t.byModel[model] = mc
	}
	mc.add(outcome, attempts)

	t.logger.Debug("ADMIN", "Recorded query usage", map[string]interface{}{
		"store_key": storeKey,
		"model":     model,
		"outcome":   outcome,
		"attempts":  attempts,
	})
}

// Snapshot copies the counters out under the read lock.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := Snapshot{
		Since:   t.since,
		Total:   t.total,
		ByStore: make(map[string]Counters, len(t.byStore)),
		ByModel: make(map[string]Counters, len(t.byModel)),
	}
	for key, c := range t.byStore {
		snap.ByStore[key] = *c
	}
	for key, c := range t.byModel {
		snap.ByModel[key] = *c
	}
	return snap
}
