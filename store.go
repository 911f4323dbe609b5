package dux

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrReducerDispatch reports a Dispatch issued from inside the reducer
// itself. The transition function must stay pure; rejecting the call is
// preferable to guessing an ordering for it.
var ErrReducerDispatch = errors.New("dux: dispatch called from inside the reducer")

// ReducerPanicError wraps a panic raised by the reducer during dispatch.
// The dispatch is all-or-nothing: state is unchanged and no subscriber ran.
type ReducerPanicError struct {
	EventType string
	Value     any
}

func (e *ReducerPanicError) Error() string {
	return fmt.Sprintf("dux: reducer panicked on %q: %v", e.EventType, e.Value)
}

// SubscriberPanicError wraps a panic raised by one subscriber callback.
// Remaining subscribers in the same notification pass still run; the faults
// are joined and returned to the dispatch caller afterwards.
type SubscriberPanicError struct {
	Value any
}

func (e *SubscriberPanicError) Error() string {
	return fmt.Sprintf("dux: subscriber panicked: %v", e.Value)
}

// subscription wraps a callback with a removal flag so an unsubscribe that
// lands mid-notification still takes effect for the rest of the pass.
type subscription struct {
	callback func()
	removed  atomic.Bool
}

// Store owns a single current state value of type S. State is only ever
// replaced wholesale by running the reducer during Dispatch; callers never
// hold a mutable alias to it.
//
// A Store is safe for concurrent use. Dispatch, state replacement and
// subscriber notification form one non-interleaved unit; dispatches that
// arrive while one is in flight are queued and run in FIFO order.
type Store[S any] struct {
	mu          sync.Mutex // guards reducer, subscribers, queue, dispatching
	reducer     Reducer[S]
	subscribers []*subscription
	queue       []Event
	dispatching bool

	stateMu sync.RWMutex
	state   S

	// Goroutine currently running the reducer, 0 when none. Used to tell a
	// reducer-originated Dispatch (rejected) from a concurrent one (queued).
	reduceGID atomic.Uint64

	logger Logger
	obs    Observability
}

// New creates a store around the given reducer. The initial state is the
// result of running the reducer once with the InitType sentinel over the
// preloaded state (WithInitialState, or the zero value of S), so a reducer
// that answers the init event can establish defaults either way.
//
// New panics if reducer is nil or if the reducer panics on the init event;
// both are construction-time programmer errors.
func New[S any](reducer Reducer[S], opts ...Option[S]) *Store[S] {
	if reducer == nil {
		panic("dux: New: nil reducer")
	}

	cfg := &config[S]{}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Store[S]{
		reducer: reducer,
		logger:  cfg.logger,
		obs:     cfg.obs,
	}
	s.state = reducer(cfg.initialState, Event{Type: InitType})
	return s
}

// GetState returns the current state snapshot. During a subscriber callback
// it returns the post-transition state of the dispatch being notified. The
// store never mutates a returned value; treat it as frozen until the next
// dispatch.
func (s *Store[S]) GetState() S {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Dispatch runs the reducer over the current state and the event, replaces
// the state with the result, then notifies every subscriber registered at
// dispatch time, in registration order.
//
// A malformed event (empty Type) is rejected with ErrMissingType and
// changes nothing. A reducer panic is returned as *ReducerPanicError with
// state unchanged. Subscriber panics do not stop the notification pass;
// they are joined and returned after it.
//
// Dispatch is reentrant from subscriber callbacks: the inner event is
// queued and runs after the current pass completes. Dispatch from inside
// the reducer is rejected with ErrReducerDispatch. A concurrent Dispatch
// while another is in flight is accepted, queued, and run by the in-flight
// dispatcher; errors from such queued events are reported through the
// store's Logger since the original caller has already returned.
func (s *Store[S]) Dispatch(event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.dispatching {
		if gid := s.reduceGID.Load(); gid != 0 && gid == goid() {
			s.mu.Unlock()
			return ErrReducerDispatch
		}
		s.queue = append(s.queue, event)
		depth := len(s.queue)
		s.mu.Unlock()
		if s.obs != nil {
			s.obs.QueueDepth(depth)
		}
		return nil
	}
	s.dispatching = true
	s.mu.Unlock()

	err := s.apply(event)

	// Drain events queued by subscribers or concurrent callers, one at a
	// time, preserving FIFO order.
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.dispatching = false
			s.mu.Unlock()
			return err
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if qerr := s.apply(next); qerr != nil {
			if s.logger != nil {
				s.logger.Error("queued dispatch failed", "type", next.Type, "error", qerr)
			}
		}
	}
}

// Subscribe registers a callback invoked with no arguments after every
// successful dispatch. The returned handle removes that specific callback;
// calling it more than once is a no-op. Both operations are safe during an
// in-flight notification pass.
func (s *Store[S]) Subscribe(callback func()) (unsubscribe func()) {
	if callback == nil {
		panic("dux: Subscribe: nil callback")
	}

	sub := &subscription{callback: callback}
	s.mu.Lock()
	s.subscribers = append(s.subscribers, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.removed.Store(true)
			s.mu.Lock()
			for i, cand := range s.subscribers {
				if cand == sub {
					s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
		})
	}
}

// ReplaceReducer swaps the transition function and dispatches the
// ReplaceType sentinel so the new reducer can reshape existing state.
func (s *Store[S]) ReplaceReducer(reducer Reducer[S]) error {
	if reducer == nil {
		return errors.New("dux: ReplaceReducer: nil reducer")
	}
	s.mu.Lock()
	s.reducer = reducer
	s.mu.Unlock()
	return s.Dispatch(Event{Type: ReplaceType})
}

// Dispatcher returns the bound dispatch capability. Hand it to coordinating
// functions that need to dispatch later (timers, I/O callbacks) without
// giving them the whole store.
func (s *Store[S]) Dispatcher() func(Event) error {
	return s.Dispatch
}

// apply runs one event through reduce-replace-notify.
func (s *Store[S]) apply(event Event) error {
	var obsCtx any
	start := time.Now()
	if s.obs != nil {
		obsCtx = s.obs.DispatchStart(event.Type)
	}

	next, err := s.reduce(event)
	if err == nil {
		s.stateMu.Lock()
		s.state = next
		s.stateMu.Unlock()
		err = s.notify(event.Type)
	}

	if s.obs != nil {
		s.obs.DispatchEnd(obsCtx, event.Type, err, time.Since(start))
	}
	return err
}

// reduce runs the reducer with panic recovery. The running goroutine is
// recorded so Dispatch can reject reducer-originated reentrancy.
func (s *Store[S]) reduce(event Event) (next S, err error) {
	s.mu.Lock()
	reducer := s.reducer
	s.mu.Unlock()

	s.reduceGID.Store(goid())
	defer s.reduceGID.Store(0)
	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.Error("reducer panicked", "type", event.Type, "panic", r, "stack", capturedStack())
			}
			err = &ReducerPanicError{EventType: event.Type, Value: r}
		}
	}()

	next = reducer(s.GetState(), event)
	return next, nil
}

// notify invokes every subscriber in a snapshot taken now, in registration
// order. Subscribers removed before they are reached are skipped;
// subscribers added from here on wait for the next dispatch.
func (s *Store[S]) notify(eventType string) error {
	s.mu.Lock()
	snapshot := make([]*subscription, len(s.subscribers))
	copy(snapshot, s.subscribers)
	s.mu.Unlock()

	var errs []error
	for _, sub := range snapshot {
		if sub.removed.Load() {
			continue
		}
		if perr := s.invoke(sub, eventType); perr != nil {
			errs = append(errs, perr)
		}
	}
	return errors.Join(errs...)
}

func (s *Store[S]) invoke(sub *subscription, eventType string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.Error("subscriber panicked", "type", eventType, "panic", r, "stack", capturedStack())
			}
			if s.obs != nil {
				s.obs.SubscriberPanic(eventType, r)
			}
			err = &SubscriberPanicError{Value: r}
		}
	}()
	sub.callback()
	return nil
}

// goid parses the current goroutine's id from its stack header
// ("goroutine N [running]: ..."). Only consulted on the contended path
// where a dispatch arrives during an in-flight one.
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := strings.Fields(string(buf[:n]))
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func capturedStack() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
