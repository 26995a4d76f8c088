package diagnostics

import (
	"context"
	"time"
)

// Entry is one failed upstream request as seen before translation.
type Entry struct {
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
	RequestID  string    `json:"requestId,omitempty"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	Status     int       `json:"status"`           // 0 when no response was received
	Kind       string    `json:"kind"`             // error kind after translation
	Message    string    `json:"message"`          // user-facing message
	Detail     string    `json:"detail,omitempty"` // raw transport error or status line
}

// Recorder persists diagnostic entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NopRecorder discards every entry.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, Entry) error { return nil }
