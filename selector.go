package dux

import "sync"

// Selector derives a value from state, memoizing on the input: as long as
// the state it last saw compares equal, the cached result is returned and
// the compute function does not run again. Selectors keep derivation logic
// out of subscribers and make repeated reads of a derived value cheap.
//
// A Selector is safe for concurrent use.
type Selector[S, R any] struct {
	compute func(S) R
	eq      func(S, S) bool

	mu      sync.Mutex
	hasLast bool
	lastIn  S
	lastOut R
}

// NewSelector creates a memoized selector for comparable state types.
func NewSelector[S comparable, R any](compute func(S) R) *Selector[S, R] {
	return NewSelectorFunc(compute, func(a, b S) bool { return a == b })
}

// NewSelectorFunc creates a memoized selector with an explicit equality
// predicate, for state types that are not comparable (slices, maps) or
// where a cheaper identity check is available.
func NewSelectorFunc[S, R any](compute func(S) R, eq func(S, S) bool) *Selector[S, R] {
	if compute == nil {
		panic("dux: NewSelectorFunc: nil compute")
	}
	if eq == nil {
		panic("dux: NewSelectorFunc: nil eq")
	}
	return &Selector[S, R]{compute: compute, eq: eq}
}

// Select returns the derived value for state, recomputing only when state
// differs from the previous input.
func (sel *Selector[S, R]) Select(state S) R {
	sel.mu.Lock()
	defer sel.mu.Unlock()

	if sel.hasLast && sel.eq(sel.lastIn, state) {
		return sel.lastOut
	}
	sel.lastIn = state
	sel.lastOut = sel.compute(state)
	sel.hasLast = true
	return sel.lastOut
}

// Observe subscribes to the store and invokes onChange only when the
// selected value actually changes between dispatches. The returned handle
// unsubscribes. Notification passes are serialized by the store, so the
// previous-value tracking needs no extra locking.
func Observe[S any, R comparable](store *Store[S], selector func(S) R, onChange func(R)) (unsubscribe func()) {
	if selector == nil {
		panic("dux: Observe: nil selector")
	}
	if onChange == nil {
		panic("dux: Observe: nil onChange")
	}

	last := selector(store.GetState())
	return store.Subscribe(func() {
		next := selector(store.GetState())
		if next != last {
			last = next
			onChange(next)
		}
	})
}
