// Package scheduler runs the API's background jobs: the optional automatic
// close of the previous month, purging expired token revocations and pruning
// the login rate limiter.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"medstock/internal/config"
	"medstock/internal/model"
	"medstock/internal/service"
	"medstock/internal/stock"
)

const (
	purgeAt         = "03:15"
	limiterInterval = 10 * time.Minute
	jobTimeout      = 2 * time.Minute
	// maxCatchUp bounds the months closed in one automatic run.
	maxCatchUp = 120
)

// MonthCloser closes a month on behalf of a user.
type MonthCloser interface {
	CloseMonth(ctx context.Context, p stock.Period, closedBy string) (*model.MonthCloseResult, error)
	OpenPeriod(ctx context.Context) (p stock.Period, ok bool, err error)
}

// TokenPurger forgets revocations of expired tokens.
type TokenPurger interface {
	PurgeRevoked(ctx context.Context) (int64, error)
}

// Pruner drops idle state and reports what is left.
type Pruner interface {
	Cleanup() int
}

// Scheduler owns the gocron scheduler and its jobs.
type Scheduler struct {
	cfg       config.SchedulerConfig
	loc       *time.Location
	reports   MonthCloser
	tokens    TokenPurger
	limiter   Pruner
	logger    *slog.Logger
	scheduler *gocron.Scheduler
	now       func() time.Time
}

// New builds a scheduler whose jobs run in loc. limiter may be nil.
func New(cfg config.SchedulerConfig, loc *time.Location, reports MonthCloser, tokens TokenPurger, limiter Pruner, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	return &Scheduler{
		cfg:       cfg,
		loc:       loc,
		reports:   reports,
		tokens:    tokens,
		limiter:   limiter,
		logger:    logger,
		scheduler: s,
		now:       time.Now,
	}
}

// Start registers the jobs and starts the scheduler in the background.
func (s *Scheduler) Start() error {
	if s.cfg.AutoMonthClose {
		if _, err := s.scheduler.Every(1).Month(1).At(s.cfg.MonthCloseAt).Do(s.runMonthClose); err != nil {
			return fmt.Errorf("schedule month close: %w", err)
		}
		s.logger.Info("automatic month close enabled", "at", s.cfg.MonthCloseAt, "user", s.cfg.AutoCloseUser)
	}

	if _, err := s.scheduler.Every(1).Day().At(purgeAt).Do(s.runPurge); err != nil {
		return fmt.Errorf("schedule token purge: %w", err)
	}

	if s.limiter != nil {
		if _, err := s.scheduler.Every(limiterInterval).Do(s.runPrune); err != nil {
			return fmt.Errorf("schedule limiter cleanup: %w", err)
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// previousPeriod is the month before the one containing now.
func previousPeriod(now time.Time) stock.Period {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return stock.PeriodOf(first.AddDate(0, 0, -1))
}

// closePreviousMonth closes every open month up to and including the month
// before today, oldest first. Nothing to close is not an error.
func (s *Scheduler) closePreviousMonth(ctx context.Context) error {
	target := previousPeriod(s.now().In(s.loc))
	for i := 0; i < maxCatchUp; i++ {
		p, ok, err := s.reports.OpenPeriod(ctx)
		if err != nil {
			return err
		}
		if !ok {
			p = target
		}
		if target.Before(p) {
			if i == 0 {
				s.logger.Info("automatic month close skipped", "period", target.String(), "reason", "already closed")
			}
			return nil
		}

		res, err := s.reports.CloseMonth(ctx, p, s.cfg.AutoCloseUser)
		if err != nil {
			// A manual close won the race; look up the open month again.
			if errors.Is(err, service.ErrMonthAlreadyClosed) || errors.Is(err, service.ErrPeriodNotOpen) {
				continue
			}
			return fmt.Errorf("close %s: %w", p, err)
		}
		s.logger.Info("automatic month close done", "period", p.String(), "forwarded", res.Close.ForwardedCount)
		if p == target {
			return nil
		}
	}
	return fmt.Errorf("more than %d open months before %s", maxCatchUp, target)
}

func (s *Scheduler) runMonthClose() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := s.closePreviousMonth(ctx); err != nil {
		s.logger.Error("automatic month close failed", "error", err)
	}
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	n, err := s.tokens.PurgeRevoked(ctx)
	if err != nil {
		s.logger.Error("purge revoked tokens failed", "error", err)
		return
	}
	s.logger.Info("purged revoked tokens", "count", n)
}

func (s *Scheduler) runPrune() {
	left := s.limiter.Cleanup()
	s.logger.Debug("rate limiter pruned", "clients", left)
}
