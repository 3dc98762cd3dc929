package service

import (
	"context"
	"time"

	"thermo_relay/internal/logger"
	"thermo_relay/internal/models"
	"thermo_relay/internal/relay"
	"thermo_relay/internal/repository"
)

// Authorization registers operators and checks their bearer tokens.
type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Controller exposes the operator mutators.
type Controller interface {
	UpdateConfig(ctx context.Context, p ConfigParams) error
	Control(ctx context.Context, action Action) error
}

// Monitoring exposes read-only controller state.
type Monitoring interface {
	GetStatus(ctx context.Context) models.StatusView
	GetConfig() models.Configuration
	GetHistory() []models.DataPoint
}

// EventLog exposes the append-only event log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ControllerEvent, error)
}

// Scheduler runs the background control loop.
// Stop via context cancellation in main() for graceful shutdown.
type Scheduler interface {
	Run(ctx context.Context)
}

// Service aggregates all sub-services.
type Service struct {
	Controller
	Monitoring
	EventLog
	Scheduler
	Authorization
}

// Deps are the hardware and outbound collaborators.
type Deps struct {
	Reader TemperatureReader
	Relay  relay.Driver
	// Sinks receive controller events in addition to the event log.
	Sinks []EventSink
	// Status receives a snapshot after each tick; may be nil.
	Status StatusSink
	Log    *logger.Logger
}

// Options configure the services.
type Options struct {
	Controller  ControllerOptions
	TickTimeout time.Duration
	Auth        AuthOptions
}

// NewService wires the repository layer and hardware into concrete services.
func NewService(ctx context.Context, repos *repository.Repository, deps Deps, opts Options) *Service {
	sinks := append([]EventSink{EventSinkFunc(repos.EventRepo.Append)}, deps.Sinks...)
	ctrl := NewControllerService(ctx, deps.Reader, deps.Relay, repos.ConfigStore, deps.Log, opts.Controller, sinks...)

	return &Service{
		Controller:    ctrl,
		Monitoring:    ctrl,
		EventLog:      NewEventLogService(repos.EventRepo),
		Scheduler:     NewSchedulerService(ctrl, deps.Status, opts.TickTimeout, deps.Log),
		Authorization: NewAuthService(repos.Operators, opts.Auth),
	}
}
