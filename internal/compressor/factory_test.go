package compressor

import (
	"testing"

	"compressd/pkg/types"
)

func TestNewFactoryUnknownBackend(t *testing.T) {
	if _, err := NewFactory("magic", Options{}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestNewFactoryHeuristic(t *testing.T) {
	f, err := NewFactory(BackendHeuristic, Options{})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	w, err := f(types.PoolConfig{Model: "m"})
	if err != nil {
		t.Fatalf("build worker: %v", err)
	}
	if w == nil {
		t.Fatalf("nil worker")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewFactoryLlamaWithoutBuildTag(t *testing.T) {
	if llamaBuilt {
		t.Skip("built with llama support")
	}
	f, err := NewFactory(BackendLlama, Options{})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if _, err := f(types.PoolConfig{Model: "m"}); !IsBackendUnavailable(err) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
}

func TestIsBackendUnavailable(t *testing.T) {
	if !IsBackendUnavailable(ErrBackendUnavailable("nope")) {
		t.Fatalf("constructor/predicate mismatch")
	}
	if IsBackendUnavailable(nil) {
		t.Fatalf("nil must not match")
	}
}
