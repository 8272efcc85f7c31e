// Package scheduler runs the daily recurring invoice generation.
// Once per day, at a configured time, every active tenant's due
// templates are stamped out into invoices.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	billingapp "github.com/invoicehub/backend/internal/application/billing"
)

// TenantSource lists tenants eligible for the daily run
type TenantSource interface {
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// InvoiceGenerator generates invoices from due templates for a tenant
type InvoiceGenerator interface {
	GenerateDue(ctx context.Context, tenantID uuid.UUID) (*billingapp.GenerateRunResponse, error)
}

// RecurringSchedulerConfig holds timing for the daily run
type RecurringSchedulerConfig struct {
	// DailyHour and DailyMinute set the local time of day for the run
	DailyHour   int
	DailyMinute int

	// CheckInterval is how often the clock is checked
	CheckInterval time.Duration
}

// DefaultRecurringSchedulerConfig returns the default timing: 2am
// local, checked every minute.
func DefaultRecurringSchedulerConfig() RecurringSchedulerConfig {
	return RecurringSchedulerConfig{
		DailyHour:     2,
		DailyMinute:   0,
		CheckInterval: time.Minute,
	}
}

// RecurringScheduler triggers due-template generation once per day
type RecurringScheduler struct {
	config    RecurringSchedulerConfig
	tenants   TenantSource
	generator InvoiceGenerator
	logger    *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewRecurringScheduler creates a new scheduler
func NewRecurringScheduler(
	config RecurringSchedulerConfig,
	tenants TenantSource,
	generator InvoiceGenerator,
	logger *zap.Logger,
) *RecurringScheduler {
	return &RecurringScheduler{
		config:    config,
		tenants:   tenants,
		generator: generator,
		logger:    logger,
	}
}

// Start starts the scheduler loop. Calling Start on a running
// scheduler is a no-op.
func (s *RecurringScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("recurring invoice scheduler started",
		zap.Int("daily_hour", s.config.DailyHour),
		zap.Int("daily_minute", s.config.DailyMinute),
		zap.Duration("check_interval", s.config.CheckInterval),
	)

	return nil
}

// Stop stops the scheduler and waits for an in-flight run to finish,
// or for ctx to expire.
func (s *RecurringScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("recurring invoice scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RecurringScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

// checkAndRun runs the generation once the daily time has passed and
// today's run has not happened yet. Comparing against "past the target
// time" rather than an exact hour:minute match means a missed tick
// still runs late instead of skipping the day.
func (s *RecurringScheduler) checkAndRun(ctx context.Context) {
	now := time.Now()
	today := now.Format("2006-01-02")

	s.mu.Lock()
	alreadyRan := s.lastRunDate == today
	s.mu.Unlock()
	if alreadyRan {
		return
	}

	target := time.Date(now.Year(), now.Month(), now.Day(),
		s.config.DailyHour, s.config.DailyMinute, 0, 0, now.Location())
	if now.Before(target) {
		return
	}

	s.mu.Lock()
	s.lastRunDate = today
	s.mu.Unlock()

	s.RunOnce(ctx)
}

// RunOnce generates due invoices for every active tenant. A failing
// tenant is logged and does not stop the run.
func (s *RecurringScheduler) RunOnce(ctx context.Context) {
	tenantIDs, err := s.tenants.FindActiveIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list tenants for recurring run", zap.Error(err))
		return
	}

	s.logger.Info("starting recurring invoice run",
		zap.Int("tenant_count", len(tenantIDs)),
	)

	var generated, skipped int
	for _, tenantID := range tenantIDs {
		run, err := s.generator.GenerateDue(ctx, tenantID)
		if err != nil {
			s.logger.Error("recurring generation failed for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		generated += len(run.Generated)
		skipped += len(run.Skipped)
	}

	s.logger.Info("recurring invoice run finished",
		zap.Int("generated", generated),
		zap.Int("skipped", skipped),
	)
}
