package library

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Autosave saves the store every interval until ctx is done. Clean stores are not
// written. It returns immediately when interval is not positive.
func (s *Store) Autosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Save(ctx, false); err != nil {
				s.logger.Warn("Autosave failed", zap.Error(err))
			}
		}
	}
}
