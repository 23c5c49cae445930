package pool

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"compressd/pkg/types"
)

// ServiceSettings are the tunables for the request-facing facade.
type ServiceSettings struct {
	// AcquireTimeout bounds how long a request waits for a worker.
	AcquireTimeout time.Duration
	// Backend name reported by Status (llama, heuristic).
	Backend string
	Logger  *zerolog.Logger
}

// Service is the thin consumer of the pool: it checks out a worker, runs the
// compression outside any lock, and releases the slot on every exit path.
// The HTTP layer talks to this type only.
type Service struct {
	pool           *Pool
	acquireTimeout time.Duration
	backend        string
	started        time.Time
	log            zerolog.Logger
}

// NewService wraps an initialized pool.
func NewService(p *Pool, s ServiceSettings) *Service {
	if s.AcquireTimeout <= 0 {
		s.AcquireTimeout = defaultAcquireTimeout
	}
	if s.Logger == nil {
		l := zerolog.Nop()
		s.Logger = &l
	}
	return &Service{
		pool:           p,
		acquireTimeout: s.AcquireTimeout,
		backend:        s.Backend,
		started:        time.Now(),
		log:            *s.Logger,
	}
}

// Compress validates the request parameters, checks a worker out of the pool
// and runs the compression. The slot is released on success and on error;
// worker failures propagate untouched.
func (s *Service) Compress(ctx context.Context, req types.CompressRequest) (types.CompressResponse, error) {
	params := types.BuildCompressionParams(req)
	w, ticket, err := s.pool.Acquire(ctx, s.acquireTimeout)
	if err != nil {
		return types.CompressResponse{}, err
	}
	defer s.pool.Release(ticket)

	res, err := w.Compress(ctx, req.Prompts, params)
	if err != nil {
		return types.CompressResponse{}, err
	}
	return types.CompressResponse{
		Prompts:          res.CompressedPrompts,
		OriginalTokens:   res.OriginTokens,
		CompressedTokens: res.CompressedTokens,
		Rate:             res.Rate,
	}, nil
}

// Reconfigure swaps the pool onto a new config. Empty fields inherit the
// current value, so callers can change just the model or just the device.
func (s *Service) Reconfigure(ctx context.Context, req types.PoolConfig) error {
	next := s.pool.Status().Config
	if req.Model != "" {
		next.Model = req.Model
	}
	if req.Device != "" {
		next.Device = req.Device
	}
	s.log.Info().Str("model", next.Model).Str("device", next.Device).Msg("reconfigure requested")
	return s.pool.Reconfigure(ctx, next)
}

// Status reports the pool snapshot plus service-level fields.
func (s *Service) Status() types.StatusResponse {
	snap := s.pool.Status()
	state := "ready"
	if snap.Available+snap.InUse == 0 {
		state = "degraded"
	}
	return types.StatusResponse{
		State:          state,
		Backend:        s.backend,
		Pool:           poolStatus(snap),
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
}

// Health mirrors the pool snapshot in the legacy /health shape.
func (s *Service) Health() types.HealthResponse {
	snap := s.pool.Status()
	if snap.Available+snap.InUse == 0 {
		return types.HealthResponse{Status: "initializing"}
	}
	ps := poolStatus(snap)
	return types.HealthResponse{Status: "healthy", PoolStatus: &ps}
}

// Ready reports whether the pool holds at least one worker.
func (s *Service) Ready() bool {
	snap := s.pool.Status()
	return snap.Available+snap.InUse > 0
}

// Close tears down the pool. Idempotent.
func (s *Service) Close() {
	s.pool.Close()
}

func poolStatus(snap Snapshot) types.PoolStatus {
	return types.PoolStatus{
		PoolSize:  snap.Capacity,
		Available: snap.Available,
		InUse:     snap.InUse,
		Model:     snap.Config.Model,
		Device:    snap.Config.Device,
	}
}
