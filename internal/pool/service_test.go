package pool

import (
	"context"
	"errors"
	"testing"
	"time"

	"compressd/pkg/types"
)

type scriptedWorker struct {
	fakeWorker
	err    error
	result types.CompressionResult
}

func (w *scriptedWorker) Compress(ctx context.Context, contexts []string, params types.CompressionParams) (types.CompressionResult, error) {
	if w.err != nil {
		return types.CompressionResult{}, w.err
	}
	return w.result, nil
}

func newTestService(t *testing.T, capacity int, worker func(cfg types.PoolConfig) Compressor) *Service {
	t.Helper()
	p, err := New(Settings{
		Capacity: capacity,
		Factory: func(cfg types.PoolConfig) (Compressor, error) {
			return worker(cfg), nil
		},
		Config:       types.PoolConfig{Model: "m0", Device: "cpu"},
		PollInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(p.Close)
	return NewService(p, ServiceSettings{AcquireTimeout: time.Second, Backend: "heuristic"})
}

func TestServiceCompress(t *testing.T) {
	svc := newTestService(t, 1, func(cfg types.PoolConfig) Compressor {
		return &scriptedWorker{result: types.CompressionResult{
			CompressedPrompts: []string{"short"},
			OriginTokens:      10,
			CompressedTokens:  5,
			Rate:              0.5,
		}}
	})
	resp, err := svc.Compress(context.Background(), types.CompressRequest{Prompts: []string{"a longer prompt"}})
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if len(resp.Prompts) != 1 || resp.Prompts[0] != "short" {
		t.Fatalf("unexpected prompts: %+v", resp.Prompts)
	}
	if resp.OriginalTokens != 10 || resp.CompressedTokens != 5 || resp.Rate != 0.5 {
		t.Fatalf("unexpected accounting: %+v", resp)
	}
}

func TestServiceCompressReleasesSlotOnWorkerError(t *testing.T) {
	boom := errors.New("compression blew up")
	svc := newTestService(t, 1, func(cfg types.PoolConfig) Compressor {
		return &scriptedWorker{err: boom}
	})
	if _, err := svc.Compress(context.Background(), types.CompressRequest{Prompts: []string{"x"}}); !errors.Is(err, boom) {
		t.Fatalf("expected worker error, got %v", err)
	}
	// The slot must be back: a second call reaches the worker again instead
	// of timing out on an exhausted pool.
	if _, err := svc.Compress(context.Background(), types.CompressRequest{Prompts: []string{"x"}}); !errors.Is(err, boom) {
		t.Fatalf("slot leaked on error path: %v", err)
	}
	if snap := svc.pool.Status(); snap.Available != 1 || snap.InUse != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestServiceCompressBackpressure(t *testing.T) {
	p, err := New(Settings{
		Capacity:     1,
		Factory:      fakeFactory(nil, nil),
		PollInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer p.Close()
	svc := NewService(p, ServiceSettings{AcquireTimeout: 50 * time.Millisecond})

	// Hold the only slot directly, then let the service time out.
	_, ticket, err := p.Acquire(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("seed acquire: %v", err)
	}
	defer p.Release(ticket)
	if _, err := svc.Compress(context.Background(), types.CompressRequest{Prompts: []string{"x"}}); !IsExhausted(err) {
		t.Fatalf("expected exhausted, got %v", err)
	}
}

func TestServiceReconfigureInheritsEmptyFields(t *testing.T) {
	svc := newTestService(t, 1, func(cfg types.PoolConfig) Compressor {
		return &fakeWorker{cfg: cfg}
	})
	if err := svc.Reconfigure(context.Background(), types.PoolConfig{Model: "m1"}); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	cfg := svc.pool.Status().Config
	if cfg.Model != "m1" {
		t.Fatalf("model not updated: %+v", cfg)
	}
	if cfg.Device != "cpu" {
		t.Fatalf("device should be inherited: %+v", cfg)
	}
}

func TestServiceStatusAndHealth(t *testing.T) {
	svc := newTestService(t, 4, func(cfg types.PoolConfig) Compressor {
		return &fakeWorker{cfg: cfg}
	})
	_, ticket, err := svc.pool.Acquire(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer svc.pool.Release(ticket)

	st := svc.Status()
	if st.State != "ready" || st.Backend != "heuristic" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.Pool.PoolSize != 4 || st.Pool.Available != 3 || st.Pool.InUse != 1 {
		t.Fatalf("unexpected pool status: %+v", st.Pool)
	}

	h := svc.Health()
	if h.Status != "healthy" || h.PoolStatus == nil || h.PoolStatus.InUse != 1 {
		t.Fatalf("unexpected health: %+v", h)
	}
	if !svc.Ready() {
		t.Fatalf("expected ready")
	}
}
