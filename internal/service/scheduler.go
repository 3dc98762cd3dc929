package service

import (
	"context"
	"time"

	"thermo_relay/internal/logger"
	"thermo_relay/internal/models"
)

// ticker is what the scheduler drives.
type ticker interface {
	Tick(ctx context.Context)
	Interval() time.Duration
	GetStatus(ctx context.Context) models.StatusView
}

// SchedulerService runs controller ticks until its context is canceled.
type SchedulerService struct {
	ctrl        ticker
	status      StatusSink
	log         *logger.Logger
	tickTimeout time.Duration
}

// NewSchedulerService returns a scheduler for ctrl. A non-positive tickTimeout
// bounds each tick by the current interval. status may be nil.
func NewSchedulerService(ctrl ticker, status StatusSink, tickTimeout time.Duration, log *logger.Logger) *SchedulerService {
	if log == nil {
		log = logger.Nop()
	}
	return &SchedulerService{ctrl: ctrl, status: status, log: log, tickTimeout: tickTimeout}
}

// Run ticks immediately and then every interval. The interval is re-read
// after each tick so configuration changes apply without a restart.
func (s *SchedulerService) Run(ctx context.Context) {
	s.log.Infow("scheduler_started", "interval", s.ctrl.Interval())
	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("scheduler_stopped")
			return
		case <-t.C:
			if ctx.Err() != nil {
				s.log.Infow("scheduler_stopped")
				return
			}
			s.runTick(ctx)
			t.Reset(s.ctrl.Interval())
		}
	}
}

func (s *SchedulerService) runTick(ctx context.Context) {
	timeout := s.tickTimeout
	if timeout <= 0 {
		timeout = s.ctrl.Interval()
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	s.ctrl.Tick(tctx)
	cancel()

	if s.status == nil || ctx.Err() != nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.status.PublishStatus(pctx, s.ctrl.GetStatus(pctx)); err != nil {
		s.log.Debugw("status_publish_failed", "error", err)
	}
}
