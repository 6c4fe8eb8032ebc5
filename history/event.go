package history

import "time"

// Direction of a message event relative to the local account.
type Direction int

const (
	Inbound Direction = iota
	Outbound
)

// Status of a message event. The values a message moves through depend
// on its direction; failure is always checked through Failed, never by
// comparing values.
type Status int

const (
	StatusUnknown Status = iota
	StatusWaiting
	StatusManualNotification
	StatusDownloading
	StatusSending
	StatusReceived
	StatusSent
	StatusDelivered
	StatusTemporarilyFailed
	StatusPermanentlyFailed
)

// Failed reports whether the status is one of the failure states.
func (s Status) Failed() bool {
	return s == StatusTemporarilyFailed || s == StatusPermanentlyFailed
}

// InProgress reports whether the event still awaits an engine side
// outcome. Only events with these statuses belong in the active set.
func (s Status) InProgress() bool {
	return s == StatusWaiting || s == StatusDownloading || s == StatusSending
}

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusManualNotification:
		return "manual-notification"
	case StatusDownloading:
		return "downloading"
	case StatusSending:
		return "sending"
	case StatusReceived:
		return "received"
	case StatusSent:
		return "sent"
	case StatusDelivered:
		return "delivered"
	case StatusTemporarilyFailed:
		return "temporarily-failed"
	case StatusPermanentlyFailed:
		return "permanently-failed"
	}
	return "unknown"
}

// ReadStatus tracks read reports independently from delivery status.
type ReadStatus int

const (
	ReadStatusUnknown ReadStatus = iota
	ReadStatusRead
	ReadStatusDeleted
)

// ChatType classifies the conversation a notification belongs to.
type ChatType int

const (
	ChatP2P ChatType = iota
	ChatRoom
)

// Extra property keys carried by an event while only its notification
// is known. They are cleared once the message is fully received.
const (
	PropNotificationIdentity = "mms-notification-imsi"
	PropExpiry               = "mms-expiry"
	PropPushData             = "mms-push-data"
	PropSendToken            = "mms-send-token"
)

// Part is one piece of MMS content already copied into history storage.
type Part struct {
	ContentID   string
	ContentType string
	Path        string
}

// Event is one MMS message in the history store.
type Event struct {
	ID         int64 // store assigned, negative until first Add
	GroupID    int64
	MmsID      string // engine assigned correlation token
	Direction  Direction
	Status     Status
	ReadStatus ReadStatus
	IsRead     bool
	LocalUID   string
	RemoteUID  string
	To         []string
	Cc         []string
	Bcc        []string
	Subject    string
	FreeText   string
	ReportRead bool
	StartTime  time.Time
	EndTime    time.Time
	Parts      []Part
	Extra      map[string]string
}

func NewEvent(direction Direction) *Event {
	now := time.Now()
	return &Event{
		ID:        -1,
		Direction: direction,
		StartTime: now,
		EndTime:   now,
		Extra:     make(map[string]string),
	}
}

func (e *Event) SetExtra(key, value string) {
	if e.Extra == nil {
		e.Extra = make(map[string]string)
	}
	e.Extra[key] = value
}

func (e *Event) ClearExtra(keys ...string) {
	for _, key := range keys {
		delete(e.Extra, key)
	}
}

// Recipients counts all addressees over the To, Cc and Bcc lists.
func (e *Event) Recipients() int {
	return len(e.To) + len(e.Cc) + len(e.Bcc)
}
