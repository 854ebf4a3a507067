package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity feed event types
const (
	EventGuardVerdict = "guard_verdict"
	EventScanVerdict  = "scan_verdict"
	EventChatBlocked  = "chat_blocked"
)

// Event describes one mediation decision. It never carries screened text
// or credentials.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Side      string    `json:"side,omitempty"` // "user" | "assistant" for guard events
	Filename  string    `json:"filename,omitempty"`
	Malicious bool      `json:"malicious"`
	IsError   bool      `json:"is_error"`
	Reason    string    `json:"reason,omitempty"`
	Time      time.Time `json:"time"`
}

func NewEvent(eventType string) Event {
	return Event{ID: uuid.New(), Type: eventType, Time: time.Now().UTC()}
}
