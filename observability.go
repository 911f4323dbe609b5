package dux

import "time"

// Observability receives dispatch lifecycle callbacks. Implementations must
// be safe for concurrent use and must not dispatch into the store.
//
// DispatchStart may return an opaque context value (a trace span, a
// timestamp, anything); the store hands it back unmodified to DispatchEnd
// for the same dispatch.
type Observability interface {
	// DispatchStart is called before the reducer runs.
	DispatchStart(eventType string) any

	// DispatchEnd is called after the notification pass (or after a failed
	// reduce) with whatever DispatchStart returned, the outcome and the
	// total duration of the dispatch.
	DispatchEnd(obsCtx any, eventType string, err error, duration time.Duration)

	// SubscriberPanic is called once per subscriber callback that panicked
	// during the notification pass.
	SubscriberPanic(eventType string, panicValue any)

	// QueueDepth reports the pending-dispatch queue length each time an
	// event is queued behind an in-flight dispatch.
	QueueDepth(depth int)
}
