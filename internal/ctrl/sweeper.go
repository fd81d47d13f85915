package ctrl

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartTokenSweeper runs the periodic cleanup of expired or inactive
// refresh tokens. It only reclaims storage: the session cap and expiry are
// enforced synchronously on the request path, so racing with request
// handling is safe. Blocks until ctx is done.
func (c *Controller) StartTokenSweeper(ctx context.Context) {
	interval := c.session.SweepInterval
	if interval <= 0 {
		interval = time.Hour * 24
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	zap.L().Info("token sweeper started", zap.Duration("interval", interval))
	c.sweepTokens(ctx)

	for {
		select {
		case <-ticker.C:
			c.sweepTokens(ctx)
		case <-ctx.Done():
			zap.L().Info("token sweeper stopped")
			return
		}
	}
}

func (c *Controller) sweepTokens(ctx context.Context) {
	const op = "auth.sweepTokens.ctrl"

	deleted, err := c.repo.DeleteDeadTokens(ctx, c.now())
	if err != nil {
		zap.L().Error("failed to sweep tokens", zap.String("op", op), zap.Error(err))
		return
	}

	zap.L().Info("swept dead refresh tokens", zap.Int64("deleted", deleted))
}
