package agent

import "github.com/dgallion1/docask/internal/document"

// EventType discriminates stream events sent to the caller.
type EventType string

const (
	EventStatus EventType = "status" // progress note, e.g. "searching document"
	EventToken  EventType = "token"  // one answer token, in generation order
	EventDone   EventType = "done"   // terminal: citations, follow-ups, status
	EventError  EventType = "error"  // terminal: provider exhaustion mid-turn
)

// Turn completion statuses carried by the terminal event.
const (
	StatusComplete = "complete"
	StatusRejected = "rejected"
)

// Event is one element of the ordered answer stream.
type Event struct {
	Type      EventType           `json:"type"`
	Content   string              `json:"content,omitempty"`
	Citations []document.Citation `json:"citations,omitempty"`
	FollowUps []string            `json:"follow_ups,omitempty"`
	Status    string              `json:"status,omitempty"`
}

// Sink consumes the event stream. A Send error means the consumer is gone;
// the producer stops and emits nothing further.
type Sink interface {
	Send(Event) error
}
