package history

import "errors"

// ErrEventNotFound is returned when an id or correlation token matches
// no stored event.
var ErrEventNotFound = errors.New("history: event not found")

// Store persists message events. All operations are synchronous and
// every mutation is visible once the call returns.
type Store interface {
	// Get returns the event stored under id, or ErrEventNotFound.
	Get(id int64) (*Event, error)
	// GetByMmsID returns the event carrying the engine assigned message
	// id, or ErrEventNotFound. Delivery and read reports are keyed this
	// way since the reporting side never learns the row id.
	GetByMmsID(mmsID string) (*Event, error)
	// Add stores a new event and assigns its ID.
	Add(event *Event) error
	// Update rewrites the stored event, its parts and properties.
	Update(event *Event) error
	// Move reassigns the stored event to newGroupID. The GroupID field
	// of the passed event is left for the caller to update.
	Move(event *Event, newGroupID int64) error
}

// GroupResolver maps a conversation identity to a group id, creating
// the group when none exists yet.
type GroupResolver interface {
	GroupFor(localUID, remoteUID string) (int64, error)
}
