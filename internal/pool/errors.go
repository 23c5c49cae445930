package pool

import (
	"fmt"
	"time"
)

// exhaustedError signals an acquire timeout for 429 mapping.
type exhaustedError struct{ wait time.Duration }

func (e exhaustedError) Error() string {
	return fmt.Sprintf("pool exhausted: no worker became available within %s", e.wait)
}

// ErrExhausted constructs the typed error returned when Acquire times out.
func ErrExhausted(wait time.Duration) error { return exhaustedError{wait: wait} }

// IsExhausted reports whether err indicates pool backpressure (return 429).
func IsExhausted(err error) bool {
	_, ok := err.(exhaustedError)
	return ok
}

// closedError signals use of a pool after Close.
type closedError struct{}

func (closedError) Error() string { return "pool is closed" }

// IsClosed reports whether err indicates the pool has been torn down.
func IsClosed(err error) bool {
	_, ok := err.(closedError)
	return ok
}

// initError wraps a factory failure during initialization or rebuild.
type initError struct {
	slot int
	err  error
}

func (e initError) Error() string {
	return fmt.Sprintf("pool init: worker %d: %v", e.slot, e.err)
}

func (e initError) Unwrap() error { return e.err }

// IsInitFailure reports whether err came from a failed worker construction.
func IsInitFailure(err error) bool {
	_, ok := err.(initError)
	return ok
}
