// Package pool serializes access to a fixed set of expensive compressor
// instances. A worker is costly to build (model load) and must never be
// invoked by two callers at once, so the pool multiplexes concurrent
// requests over capacity slots. It is structured into small files by
// concern:
//
//   - pool.go: core Pool type, checkout (Acquire/Release), drain and rebuild
//     (Reconfigure), Status, Close.
//   - config.go: Settings and package defaults; New applies defaults.
//   - errors.go: error types and helpers (IsExhausted, IsClosed,
//     IsInitFailure).
//   - metrics.go: prometheus gauges/counters for slot occupancy and waits.
//   - service.go: Service, the thin consumer the HTTP layer talks to. It
//     acquires a worker, runs the compression outside any lock, and releases
//     the slot on every exit path.
//
// The pool guarantees at most one holder per slot and that
// available + in-use == capacity after every completed operation. It makes
// no fairness promise: waiters poll at a bounded interval and slots are
// handed out in LIFO order.
package pool
