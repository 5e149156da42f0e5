package sync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Poller runs a refresh on a fixed interval until its context is cancelled.
type Poller struct {
	service  *Service
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller creates a poller refreshing every interval.
func NewPoller(service *Service, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{service: service, interval: interval, logger: logger}
}

// Start blocks, refreshing on every tick, and returns when ctx is done.
func (p *Poller) Start(ctx context.Context) {
	if p.interval <= 0 {
		return
	}
	p.logger.Info("Starting background refresh", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Background refresh stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	report, err := p.service.Refresh(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		p.logger.Debug("Background refresh superseded")
	case err != nil:
		p.logger.Warn("Background refresh failed", zap.Error(err))
	default:
		p.logger.Debug("Background refresh done",
			zap.String("run_id", report.RunID),
			zap.Int("merged", report.Merged),
		)
	}
}
