package dux

import "fmt"

// Reducer is a pure transition function: given the current state and an
// event it returns the next state. A conforming reducer is deterministic,
// has no side effects, never mutates shared reference parts of its input
// (build new slices/maps instead), and returns the input state unchanged for
// any event type it does not recognize.
type Reducer[S any] func(S, Event) S

// Compose folds several reducers into one, applying them left to right.
// Each reducer sees the state produced by the previous one, so independent
// slices of a composite state can be handled by independent reducers.
func Compose[S any](reducers ...Reducer[S]) Reducer[S] {
	return func(state S, event Event) S {
		for _, r := range reducers {
			state = r(state, event)
		}
		return state
	}
}

// CaseHandler computes the next state for one event discriminant.
type CaseHandler[S any] func(S, Event) S

// CaseReducerBuilder assembles a reducer from per-discriminant handlers.
// Events whose type has no handler fall through to identity.
type CaseReducerBuilder[S any] struct {
	cases map[string]CaseHandler[S]
}

// NewCaseReducer starts an empty builder.
func NewCaseReducer[S any]() *CaseReducerBuilder[S] {
	return &CaseReducerBuilder[S]{cases: make(map[string]CaseHandler[S])}
}

// On registers the handler for one event type. Registering the same type
// twice is a programmer error and panics at build time rather than silently
// shadowing a transition.
func (b *CaseReducerBuilder[S]) On(eventType string, handler CaseHandler[S]) *CaseReducerBuilder[S] {
	if eventType == "" {
		panic("dux: case reducer: empty event type")
	}
	if handler == nil {
		panic(fmt.Sprintf("dux: case reducer: nil handler for %q", eventType))
	}
	if _, exists := b.cases[eventType]; exists {
		panic(fmt.Sprintf("dux: case reducer: duplicate handler for %q", eventType))
	}
	b.cases[eventType] = handler
	return b
}

// Build returns the assembled reducer. The builder's case table is copied,
// so the builder can be discarded or extended independently afterwards.
func (b *CaseReducerBuilder[S]) Build() Reducer[S] {
	cases := make(map[string]CaseHandler[S], len(b.cases))
	for t, h := range b.cases {
		cases[t] = h
	}
	return func(state S, event Event) S {
		if handler, ok := cases[event.Type]; ok {
			return handler(state, event)
		}
		return state
	}
}
