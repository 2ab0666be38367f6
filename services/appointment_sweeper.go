// services/appointment_sweeper.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"salonbook-backend/repository"
)

// AppointmentSweeper periodically marks appointments whose end has passed
// as completed so they stop counting as occupying.
type AppointmentSweeper struct {
	appointments repository.AppointmentRepository
	logger       *slog.Logger
	clock        func() time.Time
	cron         *cron.Cron
}

func NewAppointmentSweeper(appointments repository.AppointmentRepository, logger *slog.Logger) *AppointmentSweeper {
	return &AppointmentSweeper{
		appointments: appointments,
		logger:       logger,
		clock:        time.Now,
	}
}

// Start registers the sweep on a standard five-field cron schedule and runs
// one sweep immediately.
func (s *AppointmentSweeper) Start(schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		s.SweepOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid sweeper schedule %q: %w", schedule, err)
	}
	s.cron = c

	s.SweepOnce(context.Background())

	c.Start()
	s.logger.Info("appointment sweeper started", "schedule", schedule)
	return nil
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *AppointmentSweeper) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *AppointmentSweeper) SweepOnce(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := s.appointments.CompleteEnded(ctx, s.clock())
	if err != nil {
		s.logger.Error("appointment sweep failed", "err", err)
		return 0
	}
	if n > 0 {
		s.logger.Info("appointments completed", "count", n)
	}
	return n
}
