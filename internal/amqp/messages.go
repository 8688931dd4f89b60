package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a change in the tracker data.
type EventType string

const (
	EventFormDeleted  EventType = "form.deleted"
	EventEntryCreated EventType = "entry.created"
	EventEntryUpdated EventType = "entry.updated"
	EventEntryDeleted EventType = "entry.deleted"
)

// EntryEvent is a lightweight change notification. It carries only ids;
// consumers fetch the current entry from the database.
type EntryEvent struct {
	Type      EventType `json:"type"`
	FormID    int64     `json:"formId"`
	EntryID   int64     `json:"entryId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntryEvent creates an event stamped with the current time
func NewEntryEvent(t EventType, formID, entryID int64) *EntryEvent {
	return &EntryEvent{
		Type:      t,
		FormID:    formID,
		EntryID:   entryID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EntryEventFromJSON decodes and validates an event
func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var evt EntryEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	switch evt.Type {
	case EventFormDeleted:
		if evt.FormID <= 0 {
			return nil, fmt.Errorf("%s event without form id", evt.Type)
		}
	case EventEntryCreated, EventEntryUpdated, EventEntryDeleted:
		if evt.EntryID <= 0 {
			return nil, fmt.Errorf("%s event without entry id", evt.Type)
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", evt.Type)
	}
	return &evt, nil
}
