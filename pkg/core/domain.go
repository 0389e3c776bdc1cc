package core

import "fmt"

// EventType represents the kind of change observed on the collection.
type EventType string

const (
	EventCreate  EventType = "CREATE"
	EventUpdate  EventType = "UPDATE"
	EventDelete  EventType = "DELETE"
	EventRefresh EventType = "REFRESH"

	// EventExternalChange is emitted by watchable backends when the stored
	// blob changed outside of this process.
	EventExternalChange EventType = "EXTERNAL"
)

// Event represents a change in the note collection.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	if e.ID == "" {
		return string(e.Type)
	}
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}
