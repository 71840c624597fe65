package app

import (
	"context"
	"time"

	"github.com/julianstephens/timediary/internal/constants"
	"github.com/julianstephens/timediary/internal/lockfile"
	"github.com/julianstephens/timediary/internal/logger"
)

// AutoSave saves the selected day every interval until ctx is done.
// A tick that finds a save still running is skipped. When a lockfile is
// configured and another process holds it, AutoSave returns at once with
// a *lockfile.HeldError.
func (c *Controller) AutoSave(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = constants.AutoSaveInterval
	}

	if c.lockPath != "" {
		lock, err := lockfile.Acquire(c.lockPath)
		if err != nil {
			logger.Warn("Auto-save disabled", "error", err)
			c.notify(NoticeWarning, "Auto-save disabled: "+err.Error(), err)
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("Failed to release auto-save lock", "error", err)
			}
		}()
	}

	logger.Debug("Auto-save started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Auto-save stopped")
			return nil
		case <-ticker.C:
			c.autoSaveTick(ctx)
		}
	}
}

// autoSaveTick runs one save unless another is in flight or nothing has
// been loaded yet. It reports whether a save was attempted.
func (c *Controller) autoSaveTick(ctx context.Context) bool {
	if !c.saveMu.TryLock() {
		logger.Debug("Skipping auto-save, a save is already running")
		return false
	}
	defer c.saveMu.Unlock()

	c.mu.Lock()
	empty := c.blocksDate == "" && c.reflectionDate == ""
	c.mu.Unlock()
	if empty {
		return false
	}

	if err := c.save(ctx); err != nil {
		logger.Warn("Auto-save failed", "error", err)
	}
	return true
}
