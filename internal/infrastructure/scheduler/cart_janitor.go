package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CartJanitor periodically deletes abandoned guest carts. Guest carts
// have no owner and are only reachable through their token, so once a
// visitor walks away the rows accumulate forever unless swept.
type CartJanitor struct {
	db        *gorm.DB
	logger    *zap.Logger
	config    CartJanitorConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// CartJanitorConfig holds configuration for the cart janitor
type CartJanitorConfig struct {
	// Enabled determines if the janitor is active
	Enabled bool

	// Retention is how long an untouched guest cart is kept
	Retention time.Duration

	// SweepInterval is how often the janitor runs
	SweepInterval time.Duration

	// SweepTimeout is the maximum time a single sweep can run
	SweepTimeout time.Duration
}

// DefaultCartJanitorConfig returns default configuration
func DefaultCartJanitorConfig() CartJanitorConfig {
	return CartJanitorConfig{
		Enabled:       true,
		Retention:     30 * 24 * time.Hour,
		SweepInterval: 6 * time.Hour,
		SweepTimeout:  5 * time.Minute,
	}
}

// NewCartJanitor creates a new cart janitor
func NewCartJanitor(db *gorm.DB, config CartJanitorConfig, logger *zap.Logger) *CartJanitor {
	return &CartJanitor{
		db:     db,
		logger: logger,
		config: config,
	}
}

// Start starts the janitor's sweep loop
func (j *CartJanitor) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.isRunning {
		j.mu.Unlock()
		return nil
	}
	if !j.config.Enabled {
		j.mu.Unlock()
		j.logger.Info("Cart janitor is disabled")
		return nil
	}
	j.isRunning = true
	j.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	j.wg.Add(1)
	go j.run(ctx)

	j.logger.Info("Cart janitor started",
		zap.Duration("retention", j.config.Retention),
		zap.Duration("sweep_interval", j.config.SweepInterval),
	)

	return nil
}

// Stop gracefully stops the janitor
func (j *CartJanitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	if !j.isRunning {
		j.mu.Unlock()
		return nil
	}
	j.isRunning = false
	j.mu.Unlock()

	if j.cancel != nil {
		j.cancel()
	}

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.logger.Info("Cart janitor stopped gracefully")
		return nil
	case <-ctx.Done():
		j.logger.Warn("Cart janitor stop timed out")
		return ctx.Err()
	}
}

func (j *CartJanitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Debug("Cart janitor loop stopping")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

// sweep deletes guest carts untouched for longer than the retention
// window. Line items go first so no orphaned rows survive a failure
// between the two statements.
func (j *CartJanitor) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, j.config.SweepTimeout)
	defer cancel()

	cutoff := time.Now().Add(-j.config.Retention)
	startTime := time.Now()

	var removed int64
	err := j.db.WithContext(sweepCtx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE owner_id IS NULL AND updated_at < ?)",
			cutoff,
		).Error; err != nil {
			return err
		}
		result := tx.Exec(
			"DELETE FROM carts WHERE owner_id IS NULL AND updated_at < ?",
			cutoff,
		)
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	duration := time.Since(startTime)

	if err != nil {
		j.logger.Error("Guest cart sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if removed > 0 {
		j.logger.Info("Guest cart sweep completed",
			zap.Int64("carts_removed", removed),
			zap.Time("cutoff", cutoff),
			zap.Duration("duration", duration),
		)
	}
}

// SweepNow runs a single sweep immediately, outside the schedule.
// Used by tests and by the seed tool after loading fixtures.
func (j *CartJanitor) SweepNow(ctx context.Context) {
	j.sweep(ctx)
}
