package events

import "time"

// Event is implemented by everything published on the event bus. The type
// code travels as message metadata so consumers can filter without decoding
// the body.
type Event interface {
	// EventType returns the code for this event, e.g. TypeQueryCompleted.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}
