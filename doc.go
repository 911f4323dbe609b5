// Package dux implements a unidirectional-data-flow state container.
//
// A Store owns a single immutable state value. The only way to change it is
// to dispatch an Event; the store runs a pure Reducer over the current state
// and the event, replaces the state with the result, then notifies
// subscribers:
//
//	type Counter struct {
//	    Value int `json:"value"`
//	}
//
//	reducer := func(s Counter, e dux.Event) Counter {
//	    switch e.Type {
//	    case "increment":
//	        return Counter{Value: s.Value + 1}
//	    case "decrement":
//	        return Counter{Value: s.Value - 1}
//	    default:
//	        return s
//	    }
//	}
//
//	store := dux.New(reducer)
//	store.Dispatch(dux.Event{Type: "increment"})
//	fmt.Println(store.GetState().Value) // 1
//
// # Events
//
// An Event is a record of something that happened: a mandatory Type
// discriminant plus an optional Payload. Events carry no behavior and
// serialize to JSON as {"type": ..., "payload": ...}. Dispatching an event
// whose Type no reducer case recognizes is not an error; a conforming
// reducer returns its input state unchanged.
//
// # Subscriptions
//
// Subscribe registers a callback invoked after every successful dispatch and
// returns an unsubscribe handle:
//
//	unsubscribe := store.Subscribe(func() {
//	    fmt.Println("state is now", store.GetState())
//	})
//	defer unsubscribe()
//
// Notification operates over a snapshot of the subscriber set taken at
// dispatch time: callbacks added during notification run from the next
// dispatch on, callbacks removed during notification are skipped if not yet
// reached. GetState inside a callback always sees the post-transition state.
//
// # Dispatch ordering
//
// Dispatch, state replacement and notification form one non-interleaved
// unit. A Dispatch issued from inside a subscriber callback (or from another
// goroutine while a dispatch is in flight) is queued and runs after the
// current notification pass completes, preserving one-dispatch-at-a-time
// ordering. Dispatching from inside the reducer itself is a usage error and
// is rejected with ErrReducerDispatch.
//
// # Composition
//
// There is no global store. Construct the Store once at the application's
// composition root and pass it (or the capability returned by Dispatcher) to
// the components that need it. Deferred work is ordinary caller-side
// composition:
//
//	dispatch := store.Dispatcher()
//	go func() {
//	    time.Sleep(time.Second)
//	    dispatch(dux.Event{Type: "tick"})
//	}()
package dux
