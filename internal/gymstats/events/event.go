package events

import (
	"strconv"
	"time"
)

// Event is one step in a session's lifecycle, as stored in session_event.
type Event struct {
	ID        int               `json:"id"`
	UserID    string            `json:"userId"`
	SessionID string            `json:"sessionId"`
	Type      EventType         `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Data      map[string]string `json:"data"`
}

// EventType can be one of:
//   - session_started
//   - session_paused
//   - session_resumed
//   - session_time_up
//   - session_finished
//   - session_discarded
type EventType string

const (
	EventTypeSessionStarted   EventType = "session_started"
	EventTypeSessionPaused    EventType = "session_paused"
	EventTypeSessionResumed   EventType = "session_resumed"
	EventTypeSessionTimeUp    EventType = "session_time_up"
	EventTypeSessionFinished  EventType = "session_finished"
	EventTypeSessionDiscarded EventType = "session_discarded"
)

func (et EventType) String() string {
	return string(et)
}

func (et EventType) IsValid() bool {
	switch et {
	case EventTypeSessionStarted,
		EventTypeSessionPaused,
		EventTypeSessionResumed,
		EventTypeSessionTimeUp,
		EventTypeSessionFinished,
		EventTypeSessionDiscarded:
		return true
	default:
		return false
	}
}

func NewSessionEvent(eventType EventType, userID, sessionID string, ts time.Time) Event {
	return Event{
		Type:      eventType,
		UserID:    userID,
		SessionID: sessionID,
		Timestamp: ts,
		Data:      map[string]string{},
	}
}

// WithElapsed records the active seconds at the time of the event.
func (e Event) WithElapsed(seconds int) Event {
	return e.with("elapsed", strconv.Itoa(seconds))
}

func (e Event) WithMode(mode string) Event {
	return e.with("mode", mode)
}

func (e Event) WithXP(totalXP int) Event {
	return e.with("xp", strconv.Itoa(totalXP))
}

func (e Event) with(key, value string) Event {
	data := make(map[string]string, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data[key] = value
	e.Data = data
	return e
}
