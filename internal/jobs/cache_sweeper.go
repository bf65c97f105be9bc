package jobs

import (
	"context"

	"github.com/cloo-solutions/plantrec/internal/logging"
)

// Sweeper removes expired entries from a cache store.
type Sweeper interface {
	Sweep() int
}

// CacheSweeper drops expired in-memory cache entries. Redis expires keys
// on its own and needs no sweeper.
type CacheSweeper struct {
	store Sweeper
}

func NewCacheSweeper(store Sweeper) *CacheSweeper {
	return &CacheSweeper{store: store}
}

func (s *CacheSweeper) Name() string { return "cache_sweep" }

func (s *CacheSweeper) Run(ctx context.Context) error {
	if n := s.store.Sweep(); n > 0 {
		logging.Ctx(ctx).Debug().Int("removed", n).Msg("expired cache entries swept")
	}
	return nil
}
