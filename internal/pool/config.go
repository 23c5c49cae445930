package pool

import (
	"time"

	"github.com/rs/zerolog"

	"compressd/pkg/types"
)

// Defaults applied when corresponding Settings fields are unset.
const (
	defaultPollInterval   = 100 * time.Millisecond
	defaultAcquireTimeout = 30 * time.Second
)

// Settings encapsulates all tunables for Pool construction.
type Settings struct {
	// Capacity is the fixed number of worker slots. Must be >= 1.
	Capacity int
	// Factory builds one worker for the given config.
	Factory Factory
	// Config is bound to every worker built at init or rebuild time.
	Config types.PoolConfig
	// PollInterval bounds how often waiters re-check for a free slot.
	PollInterval time.Duration
	// Logger for lifecycle events. Defaults to a disabled logger.
	Logger *zerolog.Logger
}

func (s *Settings) applyDefaults() {
	if s.PollInterval <= 0 {
		s.PollInterval = defaultPollInterval
	}
	if s.Logger == nil {
		l := zerolog.Nop()
		s.Logger = &l
	}
}
