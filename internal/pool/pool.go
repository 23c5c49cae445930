package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"compressd/pkg/types"
)

// Compressor is the opaque worker capability managed by the pool. The pool
// never inspects the result; it only guarantees exclusive use per checkout.
type Compressor interface {
	Compress(ctx context.Context, contexts []string, params types.CompressionParams) (types.CompressionResult, error)
	Close() error
}

// Factory builds one worker bound to the given config. Construction is
// expensive (model load) and may fail.
type Factory func(cfg types.PoolConfig) (Compressor, error)

// Ticket identifies the slot a caller holds; it must be presented to Release.
type Ticket int

// Snapshot is a read-only view of the pool taken under its lock.
type Snapshot struct {
	Capacity  int
	Available int
	InUse     int
	Config    types.PoolConfig
}

// Pool owns capacity worker slots indexed 0..capacity-1 and two disjoint
// index sets, available and in-use, whose union always covers the full range
// (outside of a failed rebuild, which leaves the pool empty).
type Pool struct {
	mu        sync.Mutex
	workers   []Compressor
	available []int // LIFO stack of free slot indices
	inUse     map[int]struct{}
	cfg       types.PoolConfig
	capacity  int
	factory   Factory
	poll      time.Duration
	closed    bool
	log       zerolog.Logger
}

// New synchronously builds capacity workers via the factory. If any single
// construction fails, workers built so far are closed and no partial pool is
// retained.
func New(s Settings) (*Pool, error) {
	if s.Capacity < 1 {
		return nil, fmt.Errorf("pool: capacity must be >= 1, got %d", s.Capacity)
	}
	if s.Factory == nil {
		return nil, errors.New("pool: factory is required")
	}
	s.applyDefaults()
	p := &Pool{
		inUse:    make(map[int]struct{}),
		cfg:      s.Config,
		capacity: s.Capacity,
		factory:  s.Factory,
		poll:     s.PollInterval,
		log:      *s.Logger,
	}
	workers, err := buildWorkers(s.Factory, s.Config, s.Capacity, p.log)
	if err != nil {
		return nil, err
	}
	p.workers = workers
	p.available = freeStack(s.Capacity)
	setSlotGauges(len(p.available), 0)
	p.log.Info().Int("capacity", s.Capacity).Str("model", s.Config.Model).Str("device", s.Config.Device).Msg("pool initialized")
	return p, nil
}

// Acquire blocks until a slot is available or timeout elapses, polling at a
// bounded interval. On success the slot moves from available to in-use and
// the bound worker is returned with its ticket. Callers must not depend on
// hand-out order. A timeout fails with an exhausted error and no side
// effects; ctx cancellation aborts the wait early.
func (p *Pool) Acquire(ctx context.Context, timeout time.Duration) (Compressor, Ticket, error) {
	if timeout <= 0 {
		timeout = defaultAcquireTimeout
	}
	start := time.Now()
	deadline := start.Add(timeout)
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, 0, closedError{}
		}
		if n := len(p.available); n > 0 {
			idx := p.available[n-1]
			p.available = p.available[:n-1]
			p.inUse[idx] = struct{}{}
			w := p.workers[idx]
			setSlotGauges(len(p.available), len(p.inUse))
			p.mu.Unlock()
			acquireWaitSeconds.Observe(time.Since(start).Seconds())
			p.log.Debug().Int("slot", idx).Msg("worker acquired")
			return w, Ticket(idx), nil
		}
		p.mu.Unlock()
		if !time.Now().Before(deadline) {
			exhaustedTotal.Inc()
			p.log.Warn().Dur("timeout", timeout).Msg("pool exhausted")
			return nil, 0, exhaustedError{wait: timeout}
		}
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-time.After(p.poll):
		}
	}
}

// Release returns the slot identified by ticket to the available set. A
// ticket that is not currently in use (already released, or never issued) is
// a no-op; Release never fails so callers can defer it unconditionally.
func (p *Pool) Release(t Ticket) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := int(t)
	if _, ok := p.inUse[idx]; !ok {
		return
	}
	delete(p.inUse, idx)
	p.available = append(p.available, idx)
	setSlotGauges(len(p.available), len(p.inUse))
	p.log.Debug().Int("slot", idx).Msg("worker released")
}

// Reconfigure drains the pool of active checkouts, then discards all workers
// and rebuilds the full set under cfg. The drain is bounded only by ctx.
//
// Known limitations, kept from the baseline design: acquires that land while
// the drain is in progress may still receive old-config workers, and new
// acquires are not gated during the drain. Once Reconfigure returns nil,
// every future acquire observes cfg. If the rebuild fails the pool is left
// empty: acquires time out and Status reports zero slots until a later
// Reconfigure succeeds.
func (p *Pool) Reconfigure(ctx context.Context, cfg types.PoolConfig) error {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return closedError{}
		}
		if len(p.inUse) == 0 {
			break
		}
		busy := len(p.inUse)
		p.mu.Unlock()
		p.log.Debug().Int("in_use", busy).Msg("reconfigure waiting for drain")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.poll):
		}
	}
	// Lock held. Detach the old workers so acquires wait out the rebuild.
	old := p.workers
	p.workers = nil
	p.available = nil
	p.cfg = cfg
	setSlotGauges(0, 0)
	p.mu.Unlock()

	closeAll(old)
	workers, err := buildWorkers(p.factory, cfg, p.capacity, p.log)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		closeAll(workers)
		return closedError{}
	}
	if err != nil {
		p.log.Error().Err(err).Msg("pool rebuild failed; pool left empty")
		return err
	}
	p.workers = workers
	p.available = freeStack(p.capacity)
	setSlotGauges(len(p.available), 0)
	rebuildsTotal.Inc()
	p.log.Info().Str("model", cfg.Model).Str("device", cfg.Device).Msg("pool reconfigured")
	return nil
}

// Status returns a snapshot taken under the pool lock.
func (p *Pool) Status() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Capacity:  p.capacity,
		Available: len(p.available),
		InUse:     len(p.inUse),
		Config:    p.cfg,
	}
}

// Close discards all workers and clears both index sets. Idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	old := p.workers
	p.workers = nil
	p.available = nil
	p.inUse = make(map[int]struct{})
	setSlotGauges(0, 0)
	p.mu.Unlock()
	closeAll(old)
	p.log.Info().Msg("pool closed")
}

// buildWorkers constructs capacity workers, closing any already built on the
// first failure so no partial set leaks.
func buildWorkers(factory Factory, cfg types.PoolConfig, capacity int, log zerolog.Logger) ([]Compressor, error) {
	workers := make([]Compressor, 0, capacity)
	for i := 0; i < capacity; i++ {
		w, err := factory(cfg)
		if err != nil {
			closeAll(workers)
			return nil, initError{slot: i, err: err}
		}
		workers = append(workers, w)
		log.Info().Int("slot", i).Msg("worker initialized")
	}
	return workers, nil
}

func closeAll(workers []Compressor) {
	for _, w := range workers {
		if w != nil {
			_ = w.Close()
		}
	}
}

func freeStack(capacity int) []int {
	s := make([]int, capacity)
	for i := range s {
		s[i] = i
	}
	return s
}
