package events

import "time"

const TypeQueryCompleted = "QUERY_COMPLETED"

// QueryCompletedEvent is emitted once a chat query reaches a terminal state,
// whether it produced an answer or a failure.
type QueryCompletedEvent struct {
	SessionID  string    `json:"session_id"`
	StoreKey   string    `json:"store_key"`
	Model      string    `json:"model"`
	Outcome    string    `json:"outcome"`
	Attempts   int       `json:"attempts"`
	OccurredAt time.Time `json:"occurred_at"`
}

var _ Event = (*QueryCompletedEvent)(nil)

func NewQueryCompletedEvent(sessionID, storeKey, model, outcome string, attempts int) *QueryCompletedEvent {
	return &QueryCompletedEvent{
		SessionID:  sessionID,
		StoreKey:   storeKey,
		Model:      model,
		Outcome:    outcome,
		Attempts:   attempts,
		OccurredAt: time.Now(),
	}
}

func (e *QueryCompletedEvent) EventType() string {
	return TypeQueryCompleted
}

func (e *QueryCompletedEvent) Timestamp() time.Time {
	return e.OccurredAt
}
