package live

import (
	"encoding/json"
	"time"

	"user-directory/internal/navigation"
	"user-directory/internal/view"
)

// Event types - Client → Server
const (
	EventTypeNavigate    = "navigate"
	EventTypeSearch      = "search"
	EventTypeClearSearch = "clear_search"
	EventTypeRetry       = "retry"
	EventTypeSelect      = "select"
	EventTypeBack        = "back"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypeState = "state"
	EventTypePong  = "pong"
	EventTypeError = "error"
	// EventTypeNavigate is also sent whenever the active route changes.
)

// Error codes carried by error events.
const (
	ErrCodeInvalidPayload = "INVALID_PAYLOAD"
	ErrCodeUnknownEvent   = "UNKNOWN_EVENT"
	ErrCodeInvalidSearch  = "INVALID_SEARCH"
	ErrCodeWrongView      = "WRONG_VIEW"
)

// Event is the envelope for all websocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type NavigatePayload struct {
	Path string `json:"path"`
}

type SearchPayload struct {
	Value string `json:"value"`
}

type SelectPayload struct {
	ID int64 `json:"id"`
}

// --- Server → Client payloads ---

// StatePayload is the current route and the state of its controller.
type StatePayload struct {
	Route  navigation.Route  `json:"route"`
	View   navigation.View   `json:"view"`
	List   *view.ListState   `json:"list,omitempty"`
	Detail *view.DetailState `json:"detail,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	evt := &Event{Type: eventType, Timestamp: time.Now().Unix()}
	if payload == nil {
		return evt, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	evt.Payload = data
	return evt, nil
}
