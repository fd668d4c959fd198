package pipeline

import (
	"encoding/json"
	"fmt"
)

// Event is one message on the suggestion stream. The set of variants is
// closed; MarshalEvent switches over all of them so a new event type cannot
// reach the wire without an explicit serialization case.
type Event interface {
	isEvent()
}

// AttemptEvent announces the first generation attempt.
type AttemptEvent struct {
	Attempt int
}

// RetryEvent announces a follow-up attempt after a failed verification.
type RetryEvent struct {
	Content string
	Attempt int
}

// ChunkEvent carries one fragment of generated text. Clients append it to
// their buffer; previously delivered chunks are never retracted.
type ChunkEvent struct {
	Content string
}

// VerifyingEvent announces that the just-completed attempt is being
// fact-checked.
type VerifyingEvent struct {
	Content string
}

// VerifiedEvent is the terminal content decision for the whole request.
// Verified=false with empty content means every attempt was exhausted.
type VerifiedEvent struct {
	Content  string
	Verified bool
	Attempt  int
	Note     string
}

// ErrorEvent reports a fatal transport or backend failure.
type ErrorEvent struct {
	Message string
}

// DoneEvent is always the last event on a stream.
type DoneEvent struct{}

func (AttemptEvent) isEvent()   {}
func (RetryEvent) isEvent()     {}
func (ChunkEvent) isEvent()     {}
func (VerifyingEvent) isEvent() {}
func (VerifiedEvent) isEvent()  {}
func (ErrorEvent) isEvent()     {}
func (DoneEvent) isEvent()      {}

// MarshalEvent encodes an event as its wire JSON object.
func MarshalEvent(ev Event) ([]byte, error) {
	switch e := ev.(type) {
	case AttemptEvent:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Attempt int    `json:"attempt"`
		}{"attempt", e.Attempt})
	case RetryEvent:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Content string `json:"content"`
			Attempt int    `json:"attempt"`
		}{"retry", e.Content, e.Attempt})
	case ChunkEvent:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}{"chunk", e.Content})
	case VerifyingEvent:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}{"verifying", e.Content})
	case VerifiedEvent:
		return json.Marshal(struct {
			Type     string `json:"type"`
			Content  string `json:"content"`
			Verified bool   `json:"verified"`
			Attempt  int    `json:"attempt,omitempty"`
			Note     string `json:"note,omitempty"`
		}{"verified", e.Content, e.Verified, e.Attempt, e.Note})
	case ErrorEvent:
		return json.Marshal(struct {
			Type  string `json:"type"`
			Error string `json:"error"`
		}{"error", e.Message})
	case DoneEvent:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{"done"})
	default:
		return nil, fmt.Errorf("unknown event type %T", ev)
	}
}

// EventSink receives events in order. A Send error means the subscriber is
// gone; the pipeline stops issuing backend calls once it observes one.
type EventSink interface {
	Send(ev Event) error
}
