package dux

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel event types dispatched by the store itself. They are namespaced
// so application discriminants never collide with them.
const (
	// InitType is dispatched once when a store is created. Reducers that
	// want to establish defaults beyond the preloaded state can handle it;
	// most reducers let it fall through to the identity branch.
	InitType = "@@dux/INIT"

	// ReplaceType is dispatched by ReplaceReducer so the new reducer can
	// reshape existing state if it needs to.
	ReplaceType = "@@dux/REPLACE"
)

// ErrMissingType reports a malformed event: the Type discriminant is empty.
var ErrMissingType = errors.New("dux: event has no type")

// Event is an immutable record of something that happened. Type is the
// mandatory discriminant; Payload is optional associated data. Events carry
// no behavior.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// NewEvent builds an event with the given discriminant and no payload.
func NewEvent(eventType string) Event {
	return Event{Type: eventType}
}

// Validate reports whether the event is well-formed.
func (e Event) Validate() error {
	if e.Type == "" {
		return ErrMissingType
	}
	return nil
}

// internal returns true for the store's own sentinel events.
func (e Event) internal() bool {
	return e.Type == InitType || e.Type == ReplaceType
}

// MarshalJSON encodes the event as {"type": ..., "payload": ...}, rejecting
// malformed events so a bad record never reaches the wire.
func (e Event) MarshalJSON() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	type wire Event
	return json.Marshal(wire(e))
}

// UnmarshalJSON decodes the wire shape and validates the discriminant.
func (e *Event) UnmarshalJSON(data []byte) error {
	type wire Event
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("dux: unmarshal event: %w", err)
	}
	if w.Type == "" {
		return ErrMissingType
	}
	*e = Event(w)
	return nil
}

// Creator returns a factory for events of a fixed type, so call sites can
// share one definition of the discriminant:
//
//	incrementBy := dux.Creator("incrementByAmount")
//	store.Dispatch(incrementBy(5))
func Creator(eventType string) func(payload any) Event {
	return func(payload any) Event {
		return Event{Type: eventType, Payload: payload}
	}
}
