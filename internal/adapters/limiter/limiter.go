// Package limiter paces outbound API requests.
package limiter

import (
	"context"

	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	"golang.org/x/time/rate"
)

const (
	DefaultRPS = 20
	MinRPS     = 1
	MaxRPS     = 100
)

// Limiter is a token bucket shared by the requests of one run.
type Limiter struct {
	limiter *rate.Limiter
	rps     int
	logger  ports.Logger
}

// New builds a limiter. Out-of-range rates fall back to DefaultRPS; a burst
// below 1 defaults to the rate.
func New(rps, burst int, logger ports.Logger) *Limiter {
	limitValue := DefaultRPS
	if rps >= MinRPS && rps <= MaxRPS {
		limitValue = rps
	} else if rps != 0 {
		logger.Warnf(context.Background(), "Invalid API RPS configured (%d), using default %d RPS. Valid range: %d-%d.", rps, DefaultRPS, MinRPS, MaxRPS)
	}
	if burst < 1 {
		burst = limitValue
	}
	logger.Debugf(context.Background(), "Initialized API rate limiter: %d RPS, burst %d", limitValue, burst)
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(limitValue), burst),
		rps:     limitValue,
		logger:  logger,
	}
}

func (l *Limiter) RPS() int {
	return l.rps
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			l.logger.Warnf(ctx, "Error waiting for API rate limiter: %v", err)
		}
		return err
	}
	return nil
}
