package authkit

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultSweepInterval is how often the sweeper prunes dead refresh rows.
const DefaultSweepInterval = time.Hour

// TokenSweeper removes expired and revoked refresh rows on an interval.
// Sweeping is a storage-hygiene concern only: expired and revoked rows are
// already unusable, deleting them never changes auth outcomes.
type TokenSweeper struct {
	tokens   TokenStore
	interval time.Duration
	logger   Logger
	now      func() time.Time
}

// NewTokenSweeper builds a sweeper over the token store.
func NewTokenSweeper(tokens TokenStore) *TokenSweeper {
	return &TokenSweeper{
		tokens:   tokens,
		interval: DefaultSweepInterval,
		logger:   defLogger{},
		now:      time.Now,
	}
}

// WithInterval overrides the sweep interval.
func (s *TokenSweeper) WithInterval(interval time.Duration) *TokenSweeper {
	if interval > 0 {
		s.interval = interval
	}
	return s
}

// WithLogger overrides the logger.
func (s *TokenSweeper) WithLogger(logger Logger) *TokenSweeper {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock injects a custom time source.
func (s *TokenSweeper) WithClock(clock func() time.Time) *TokenSweeper {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Sweep performs one pruning pass and returns the number of rows removed.
func (s *TokenSweeper) Sweep(ctx context.Context) (int64, error) {
	expired, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to delete expired tokens")
	}

	revoked, err := s.tokens.DeleteRevoked(ctx)
	if err != nil {
		return expired, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to delete revoked tokens")
	}

	return expired + revoked, nil
}

// Run sweeps on the configured interval until the context is canceled. A
// failed pass is logged and retried on the next tick.
func (s *TokenSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := s.Sweep(ctx)
			if err != nil {
				s.logger.Error("token sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				s.logger.Info("token sweep removed %d rows", removed)
			}
		}
	}
}
