//go:build !llama

package compressor

// This file provides a no-CGO stub for the llama backend. It is compiled
// when the 'llama' build tag is NOT set, keeping default builds and CI
// CGO-free. The real backend lives in llama.go (tagged 'llama').

import (
	"context"

	"compressd/pkg/types"
)

// llamaBuilt indicates this binary was compiled without real llama support.
var llamaBuilt = false

// llamaCompressor is a stub that refuses to construct so binaries without
// the 'llama' tag fail fast instead of serving mocked compressions.
type llamaCompressor struct{}

func newLlamaCompressor(cfg types.PoolConfig, opts Options) (*llamaCompressor, error) {
	return nil, ErrBackendUnavailable("llama support not built (missing 'llama' build tag)")
}

func (c *llamaCompressor) Compress(ctx context.Context, contexts []string, params types.CompressionParams) (types.CompressionResult, error) {
	// Unreachable in practice because the constructor fails.
	if err := ctx.Err(); err != nil {
		return types.CompressionResult{}, err
	}
	return types.CompressionResult{}, ErrBackendUnavailable("llama support not built (missing 'llama' build tag)")
}

func (c *llamaCompressor) Close() error { return nil }
