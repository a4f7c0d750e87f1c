// This package provides a shared-ownership container for a single value
// guarded by a reader/writer lock.  Access to the value is closure-scoped:
// callers never hold a reference to the value outside of a granted scope,
// so the lock cannot be leaked or held past its intended duration.
package cell

import (
	"fmt"
	"sync"

	"github.com/davecgh/go-spew/spew"

	"github.com/gobag/gobag/errors"
)

// Returned by accessors once a write closure has panicked while holding the
// write lock.  At that point the interior value may have been left half
// mutated, and generic code cannot verify its invariants.  The condition is
// surfaced to every subsequent access rather than repaired internally;
// callers that can re-establish the value's invariants may do so via
// Recover.
var ErrPoisoned = errors.New("cell: poisoned by abnormal writer termination")

// A handle to a single shared value guarded by a reader/writer lock.
//
// Obeys the typical rules about RWLocks
//
//  1. If a write scope is active, it is the only active scope.
//  2. If no write scope is active, any number of read scopes may be active.
//
// A Cell is a cheap handle: Clone (or a plain copy of the Cell value)
// yields another handle to the same storage and lock, suitable for handing
// to other goroutines.  The storage lives for as long as any handle is
// reachable.
//
// Acquisition waits indefinitely; there are no timeouts and no
// cancellation.  Fairness between waiting readers and writers is whatever
// sync.RWMutex provides: once a writer blocks, readers arriving behind it
// wait until the writer is done.  Strict FIFO ordering is not guaranteed.
type Cell[T any] struct {
	s *cellState[T]
}

// The shared storage behind one or more handles.  The poisoned flag is only
// accessed while mu is held (either side).
type cellState[T any] struct {
	mu       sync.RWMutex
	value    T
	poisoned bool
}

// Creates a new Cell owning the given initial value.  Never fails.
func New[T any](initial T) Cell[T] {
	return Cell[T]{
		s: &cellState[T]{value: initial},
	}
}

// Returns a new handle sharing this handle's storage and lock.  O(1),
// never fails.  Mutations made through either handle are visible through
// the other.
func (c Cell[T]) Clone() Cell[T] {
	return Cell[T]{s: c.s}
}

// Runs f inside an exclusive write scope, passing a pointer to the interior
// value.  The pointer is valid only for the duration of the call; f must
// not retain it.  Blocks until all current readers and any other writer
// have released the lock.
//
// The lock is released on every exit path.  If f panics, the cell is marked
// poisoned before the lock is released and the panic is re-raised;
// subsequent accesses through any handle return ErrPoisoned.
func (c Cell[T]) With(f func(v *T)) error {
	s := c.s
	s.mu.Lock()
	if s.poisoned {
		s.mu.Unlock()
		return ErrPoisoned
	}
	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			s.mu.Unlock()
			panic(r)
		}
		s.mu.Unlock()
	}()
	f(&s.value)
	return nil
}

// Runs f inside a shared read scope, passing a copy of the interior value.
// Read scopes from different goroutines proceed concurrently; the call
// blocks only while a writer holds the lock.
//
// A panic in f releases the read lock and propagates, but does not poison
// the cell: a reader cannot have left the value half mutated.
func (c Cell[T]) WithRead(f func(v T)) error {
	s := c.s
	s.mu.RLock()
	if s.poisoned {
		s.mu.RUnlock()
		return ErrPoisoned
	}
	defer s.mu.RUnlock()
	f(s.value)
	return nil
}

// Runs f inside an exclusive write scope and carries its result through
// unmodified.  This is the free-function form of Cell.With: methods cannot
// introduce a second type parameter for the result.
func With[T, R any](c Cell[T], f func(v *T) R) (R, error) {
	var res R
	err := c.With(func(v *T) {
		res = f(v)
	})
	return res, err
}

// Runs f inside a shared read scope and carries its result through
// unmodified.  Free-function form of Cell.WithRead.
func WithRead[T, R any](c Cell[T], f func(v T) R) (R, error) {
	var res R
	err := c.WithRead(func(v T) {
		res = f(v)
	})
	return res, err
}

// Returns a copy of the interior value via a read scope.
func (c Cell[T]) Load() (T, error) {
	var v T
	err := c.WithRead(func(cur T) {
		v = cur
	})
	return v, err
}

// Replaces the interior value via a write scope.
func (c Cell[T]) Store(v T) error {
	return c.With(func(cur *T) {
		*cur = v
	})
}

// Replaces the interior value via a write scope and returns the previous
// value.
func (c Cell[T]) Swap(v T) (T, error) {
	var old T
	err := c.With(func(cur *T) {
		old = *cur
		*cur = v
	})
	return old, err
}

// Reports whether a previous write closure panicked while holding the
// write lock.
func (c Cell[T]) Poisoned() bool {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	return c.s.poisoned
}

// Grants a write scope regardless of poison state so the caller can inspect
// and re-establish the interior value's invariants, then clears the poison
// flag.  If f panics, the cell stays poisoned.
//
// This is the only recovery path; nothing clears the flag automatically.
func (c Cell[T]) Recover(f func(v *T)) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	f(&c.s.value)
	c.s.poisoned = false
}

// Renders the current value for debugging, taking a read scope to do so.
// A poisoned cell renders as a placeholder since its value cannot be
// trusted.
func (c Cell[T]) String() string {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	if c.s.poisoned {
		return "Cell(<poisoned>)"
	}
	return fmt.Sprintf("Cell(%s)", spew.Sprintf("%#v", c.s.value))
}
