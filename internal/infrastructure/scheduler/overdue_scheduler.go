package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// cronTickerInterval is the interval at which the scheduler checks for execution
const cronTickerInterval = 1 * time.Minute

// OverdueSweeper flips past-due credit accounts to OVERDUE. Implemented by
// the credit application service.
type OverdueSweeper interface {
	UpdateOverdueAccounts(ctx context.Context, asOf time.Time) (int, error)
}

// OverdueCronSchedulerConfig holds configuration for the overdue sweep scheduler
type OverdueCronSchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// CronHour is the hour (0-23) to run the daily sweep
	CronHour int
	// CronMinute is the minute (0-59) to run the daily sweep
	CronMinute int
	// JobTimeout is the maximum time one sweep can run
	JobTimeout time.Duration
}

// DefaultOverdueCronSchedulerConfig returns the default configuration,
// running at 1:00 AM daily
func DefaultOverdueCronSchedulerConfig() OverdueCronSchedulerConfig {
	return OverdueCronSchedulerConfig{
		Enabled:    true,
		CronHour:   1,
		CronMinute: 0,
		JobTimeout: 10 * time.Minute,
	}
}

// ParseCronSchedule parses a cron expression "minute hour * * *" to extract
// hour and minute. Returns defaults (1:00) if the expression is empty.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour = 1
	minute = 0

	if cronExpr == "" {
		return hour, minute, nil
	}

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return hour, minute, nil
	}

	if parts[0] != "*" {
		if val, parseErr := parseIntOrDefault(parts[0], 0); parseErr == nil {
			minute = val
		}
	}
	if parts[1] != "*" {
		if val, parseErr := parseIntOrDefault(parts[1], 1); parseErr == nil {
			hour = val
		}
	}

	if minute < 0 || minute > 59 {
		return 1, 0, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 1, 0, fmt.Errorf("hour must be 0-23, got %d", hour)
	}

	return hour, minute, nil
}

// parseIntOrDefault parses an int string or returns default
func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" || s == "*" {
		return defaultVal, nil
	}
	var val int
	for _, c := range s {
		if c < '0' || c > '9' {
			return defaultVal, ErrInvalidConfig
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// OverdueCronScheduler runs the daily credit overdue sweep. The sweep itself
// takes row locks with SKIP LOCKED, so overlapping runs from multiple
// instances are safe.
type OverdueCronScheduler struct {
	config  OverdueCronSchedulerConfig
	sweeper OverdueSweeper
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewOverdueCronScheduler creates a new overdue sweep scheduler
func NewOverdueCronScheduler(config OverdueCronSchedulerConfig, sweeper OverdueSweeper, logger *zap.Logger) *OverdueCronScheduler {
	return &OverdueCronScheduler{
		config:  config,
		sweeper: sweeper,
		logger:  logger,
	}
}

// Start starts the scheduler
func (s *OverdueCronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Overdue sweep scheduler started",
		zap.Int("cron_hour", s.config.CronHour),
		zap.Int("cron_minute", s.config.CronMinute),
		zap.Timep("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop stops the scheduler
func (s *OverdueCronScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Overdue sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue sweep scheduler stop timed out")
		return ctx.Err()
	}
}

// cronLoop runs the main cron loop
func (s *OverdueCronScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runSweep(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

// shouldRun checks if the sweep should run at the given time
func (s *OverdueCronScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.config.CronHour && now.Minute() == s.config.CronMinute
}

// calculateNextRunTime calculates the next run time
func (s *OverdueCronScheduler) calculateNextRunTime() {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.CronHour, s.config.CronMinute, 0, 0, now.Location())
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// runSweep runs one overdue sweep bounded by the job timeout
func (s *OverdueCronScheduler) runSweep(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	s.logger.Info("Starting credit overdue sweep")

	sweepCtx := ctx
	if s.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		sweepCtx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
	}

	flipped, err := s.sweeper.UpdateOverdueAccounts(sweepCtx, now)
	if err != nil {
		s.logger.Error("Credit overdue sweep failed", zap.Error(err))
		return
	}

	s.logger.Info("Credit overdue sweep completed", zap.Int("accounts_flipped", flipped))
}

// TriggerManualRun triggers a manual sweep.
// Note: Uses background context to avoid premature cancellation when the
// HTTP request completes.
func (s *OverdueCronScheduler) TriggerManualRun(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	go s.runSweep(context.Background())
	return nil
}

// GetStatus returns the current status of the scheduler
func (s *OverdueCronScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":     s.config.Enabled,
		"is_running":  s.isRunning,
		"cron_hour":   s.config.CronHour,
		"cron_minute": s.config.CronMinute,
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
	}
}

// GetNextRunAt returns when the next scheduled run will occur
func (s *OverdueCronScheduler) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}
