package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 2 * time.Minute

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// BookingExpirer persists EXPIRED on stale pending bookings.
type BookingExpirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// OverdueReminder notifies borrowers holding overdue books.
type OverdueReminder interface {
	RemindOverdue(ctx context.Context) (int, error)
}

// Result reports what one sweep changed.
type Result struct {
	ExpiredBookings  int64
	OverdueReminders int
}

// Sweeper runs the periodic housekeeping jobs on a cron schedule.
type Sweeper struct {
	bookings BookingExpirer
	borrows  OverdueReminder
	log      *zap.Logger

	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.Mutex
	running bool
}

func NewSweeper(bookings BookingExpirer, borrows OverdueReminder, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		bookings: bookings,
		borrows:  borrows,
		log:      log.Named("sweeper"),
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// ValidateSchedule accepts five-field cron expressions and descriptors such as @daily.
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// RunOnce expires bookings and sends overdue reminders. Both jobs run even if
// the first fails.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, error) {
	var (
		res  Result
		errs []error
	)

	expired, err := s.bookings.ExpireOverdue(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("expire bookings: %w", err))
	}
	res.ExpiredBookings = expired

	reminded, err := s.borrows.RemindOverdue(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("remind overdue borrows: %w", err))
	}
	res.OverdueReminders = reminded

	return res, errors.Join(errs...)
}

// Start schedules the sweep. An empty schedule leaves the sweeper disabled.
func (s *Sweeper) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if schedule == "" {
		s.log.Info("sweeper disabled")
		return nil
	}
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(schedule, s.sweep)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.entryID = entryID
	s.cron.Start()
	s.running = true

	s.log.Info("sweeper started",
		zap.String("schedule", schedule),
		zap.Time("next_run", s.cron.Entry(entryID).Next))
	return nil
}

// Run starts the sweeper and blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context, schedule string) error {
	if err := s.Start(schedule); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.running = false
	s.log.Info("sweeper stopped")
}

func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns when the next sweep is due, or nil when stopped.
func (s *Sweeper) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.RunOnce(ctx)
	fields := []zap.Field{
		zap.Int64("expired_bookings", res.ExpiredBookings),
		zap.Int("overdue_reminders", res.OverdueReminders),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		s.log.Error("sweep failed", append(fields, zap.Error(err))...)
		return
	}
	s.log.Info("sweep finished", fields...)
}
