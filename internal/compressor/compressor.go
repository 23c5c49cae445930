// Package compressor provides the worker implementations handed to the pool.
// The llama backend loads a real model (build tag 'llama', CGO); the
// heuristic backend is a deterministic token dropper for development and
// tests. Both produce the same result shape.
package compressor

import (
	"fmt"

	"compressd/internal/pool"
	"compressd/pkg/types"
)

// Backend names accepted in configuration.
const (
	BackendLlama     = "llama"
	BackendHeuristic = "heuristic"
)

// Options carries backend tunables that are not part of the pool config.
type Options struct {
	// CtxSize is the model context window (llama backend).
	CtxSize int
	// Threads used per inference call (llama backend).
	Threads int
	// GPULayers offloaded when the device is cuda (llama backend).
	GPULayers int
}

// NewFactory returns a pool factory for the named backend.
func NewFactory(backend string, opts Options) (pool.Factory, error) {
	switch backend {
	case BackendLlama:
		return func(cfg types.PoolConfig) (pool.Compressor, error) {
			w, err := newLlamaCompressor(cfg, opts)
			if err != nil {
				return nil, err
			}
			return w, nil
		}, nil
	case BackendHeuristic:
		return func(cfg types.PoolConfig) (pool.Compressor, error) {
			return newHeuristicCompressor(cfg), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown compression backend: %q", backend)
	}
}

// backendUnavailableError signals a missing runtime dependency (e.g. a
// binary built without the llama tag) so the HTTP layer can return 503
// instead of 500.
type backendUnavailableError struct{ msg string }

func (e backendUnavailableError) Error() string { return e.msg }

// ErrBackendUnavailable constructs a backendUnavailableError.
func ErrBackendUnavailable(msg string) error { return backendUnavailableError{msg: msg} }

// IsBackendUnavailable reports whether err indicates a missing backend runtime.
func IsBackendUnavailable(err error) bool {
	_, ok := err.(backendUnavailableError)
	return ok
}
