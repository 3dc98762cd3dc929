package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"thermo_relay/internal/history"
	"thermo_relay/internal/logger"
	"thermo_relay/internal/models"
	"thermo_relay/internal/relay"
	"thermo_relay/internal/repository"
)

// Factory defaults, used when nothing valid is stored.
const (
	DefaultTempLow       = 20.0
	DefaultTempHigh      = 25.0
	DefaultCheckInterval = 5
	DefaultMinTemp       = -10.0
	DefaultMaxTemp       = 50.0

	MinCheckInterval = 1
	MaxCheckInterval = 60
)

// publishTimeout bounds event delivery after a tick, independent of the
// tick's own deadline.
const publishTimeout = 3 * time.Second

// persistTimeout bounds a config save once the update has been applied.
const persistTimeout = 3 * time.Second

// DefaultConfiguration returns the factory configuration.
func DefaultConfiguration() models.Configuration {
	return models.Configuration{
		TempLow:       DefaultTempLow,
		TempHigh:      DefaultTempHigh,
		CheckInterval: DefaultCheckInterval,
		MinTemp:       DefaultMinTemp,
		MaxTemp:       DefaultMaxTemp,
	}
}

// TemperatureReader is the classified sensor read used by the controller.
// sensor.Reader implements it.
type TemperatureReader interface {
	ReadTemperature(ctx context.Context, minTemp float64) (float64, error)
}

// ControllerOptions tunes a ControllerService.
type ControllerOptions struct {
	// Defaults replaces DefaultConfiguration when non-zero.
	Defaults models.Configuration
	// HistoryCapacity is the number of samples kept; <= 0 means history.DefaultCapacity.
	HistoryCapacity int
	// MonitorWhenStopped keeps sampling while the controller is stopped.
	MonitorWhenStopped bool
	// Now overrides the clock in tests.
	Now func() time.Time
}

// ControllerService owns the hysteresis loop: it reads the sensor, switches the
// relay around the two thresholds, latches the over-temperature cutoff and keeps
// the sample history and status counters.
type ControllerService struct {
	reader TemperatureReader
	relay  relay.Driver
	store  repository.ConfigStore
	sinks  []EventSink
	log    *logger.Logger
	now    func() time.Time

	monitorWhenStopped bool

	tickMu    sync.Mutex // serializes ticks
	persistMu sync.Mutex // orders config writes

	mu            sync.Mutex // guards everything below
	cfg           models.Configuration
	running       bool
	shutdown      bool
	relayActive   bool
	temp          float64
	hasTemp       bool
	lastReadingAt time.Time
	history       *history.Ring
	counters      counters
}

// NewControllerService builds a running controller with the relay off.
// The thresholds come from store; missing or invalid stored values are
// replaced by the defaults, which are then written back.
func NewControllerService(ctx context.Context, reader TemperatureReader, drv relay.Driver, store repository.ConfigStore, log *logger.Logger, opts ControllerOptions, sinks ...EventSink) *ControllerService {
	if log == nil {
		log = logger.Nop()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	defaults := opts.Defaults
	if defaults == (models.Configuration{}) {
		defaults = DefaultConfiguration()
	}

	s := &ControllerService{
		reader:             reader,
		relay:              drv,
		store:              store,
		sinks:              sinks,
		log:                log,
		now:                now,
		monitorWhenStopped: opts.MonitorWhenStopped,
		running:            true,
		history:            history.NewRing(opts.HistoryCapacity),
	}
	s.counters.reset(now())
	s.cfg = s.loadConfig(ctx, defaults)

	s.mu.Lock()
	_ = s.writeRelayLocked(false)
	s.mu.Unlock()

	return s
}

func (s *ControllerService) loadConfig(ctx context.Context, defaults models.Configuration) models.Configuration {
	if s.store == nil {
		return defaults
	}

	stored, found, err := s.store.Load(ctx)
	switch {
	case err != nil:
		s.log.Warnw("config_load_failed", "error", err)
	case !found:
		s.log.Infow("config_not_found", "using", "defaults")
	default:
		cfg := withStored(defaults, stored)
		verr := validateConfig(cfg)
		if verr == nil {
			s.log.Infow("config_loaded", "temp_low", cfg.TempLow, "temp_high", cfg.TempHigh, "check_interval", cfg.CheckInterval)
			return cfg
		}
		s.log.Warnw("stored_config_invalid", "error", verr)
	}

	if err := s.store.Save(ctx, toStored(defaults)); err != nil {
		s.log.Errorw("config_save_failed", "error", err)
	}
	return defaults
}

// Tick runs one control cycle. The sensor read happens outside the state lock;
// its result is applied atomically, so readers see either the pre-tick or the
// post-tick state.
func (s *ControllerService) Tick(ctx context.Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	s.retryCutoffLocked()
	sample := s.running || s.monitorWhenStopped
	minTemp := s.cfg.MinTemp
	s.mu.Unlock()
	if !sample {
		return
	}

	temp, err := s.reader.ReadTemperature(ctx, minTemp)
	now := s.now()

	s.mu.Lock()
	var events []models.ControllerEvent
	switch {
	case !s.running && !s.monitorWhenStopped:
		// stopped while the read was in flight
	case err != nil:
		events = s.sensorFailedLocked(err, now)
	default:
		events = s.applyReadingLocked(temp, now)
	}
	s.mu.Unlock()

	s.publish(ctx, events)
}

func (s *ControllerService) sensorFailedLocked(err error, now time.Time) []models.ControllerEvent {
	firstFailure := s.counters.sensorFailed(err)
	if !firstFailure {
		s.log.Debugw("sensor_read_failed", "error", err, "errors", s.counters.errors)
		return nil
	}
	s.log.Warnw("sensor_read_failed", "error", err, "errors", s.counters.errors)
	return []models.ControllerEvent{
		newEvent(now, models.EventSensorError, "Sensor read failed", map[string]any{"error": err.Error()}),
	}
}

func (s *ControllerService) applyReadingLocked(temp float64, now time.Time) []models.ControllerEvent {
	var events []models.ControllerEvent

	s.temp, s.hasTemp, s.lastReadingAt = temp, true, now
	if restored := s.counters.sensorOK(); restored {
		s.log.Infow("sensor_restored", "temperature", temp)
		events = append(events, newEvent(now, models.EventSensorRestored, "Sensor readings restored",
			map[string]any{"temperature": temp}))
	}

	s.history.Record(models.DataPoint{Timestamp: now, Temperature: temp, RelayActive: s.relayActive})

	return append(events, s.decideLocked(temp, now)...)
}

// decideLocked applies the switching rules in order: over-temperature cutoff,
// low threshold, high threshold. Each rule only fires if it would change the
// relay, so readings equal to a threshold never rewrite the output.
func (s *ControllerService) decideLocked(temp float64, now time.Time) []models.ControllerEvent {
	cfg := s.cfg
	switch {
	case temp >= cfg.MaxTemp:
		if s.running || s.relayActive {
			return s.enterShutdownLocked(temp, now)
		}
	case !s.running:
		// sampling only
	case temp <= cfg.TempLow:
		if !s.relayActive {
			return s.switchRelayLocked(true, now, "threshold", temp)
		}
	case temp >= cfg.TempHigh:
		if s.relayActive {
			return s.switchRelayLocked(false, now, "threshold", temp)
		}
	}
	return nil
}

func (s *ControllerService) enterShutdownLocked(temp float64, now time.Time) []models.ControllerEvent {
	already := s.shutdown
	s.running = false
	s.shutdown = true
	_ = s.writeRelayLocked(false)
	if already {
		return nil
	}

	s.log.Errorw("emergency_shutdown", "temperature", temp, "max_temp", s.cfg.MaxTemp)
	return []models.ControllerEvent{
		newEvent(now, models.EventShutdown, fmt.Sprintf("Emergency shutdown at %.2f°C", temp), map[string]any{
			"temperature": temp,
			"max_temp":    s.cfg.MaxTemp,
		}),
	}
}

// retryCutoffLocked repeats the emergency off write on every tick while a
// latched shutdown still has the relay energized after a failed write.
func (s *ControllerService) retryCutoffLocked() {
	if s.shutdown && s.relayActive {
		_ = s.writeRelayLocked(false)
	}
}

func (s *ControllerService) switchRelayLocked(active bool, now time.Time, source string, temp float64) []models.ControllerEvent {
	if err := s.writeRelayLocked(active); err != nil {
		return nil
	}
	s.log.Infow("relay_switched", "active", active, "source", source, "temperature", temp)
	return []models.ControllerEvent{relayEvent(now, active, source, temp)}
}

// writeRelayLocked drives the output. On failure the in-memory relay state is
// left alone so the next matching tick retries the write.
func (s *ControllerService) writeRelayLocked(active bool) error {
	if err := s.relay.Write(active); err != nil {
		s.counters.relayFailed(err)
		s.log.Errorw("relay_write_failed", "active", active, "error", err)
		return fmt.Errorf("write relay: %w", err)
	}
	s.counters.relayWorking = true
	s.relayActive = active
	return nil
}

// UpdateConfig validates and applies new thresholds atomically. Either all
// fields change or none do. The new values take effect on the next tick.
// Persistence failures are logged; the in-memory update still stands.
func (s *ControllerService) UpdateConfig(ctx context.Context, p ConfigParams) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	next := s.cfg
	next.TempLow, next.TempHigh, next.CheckInterval = p.TempLow, p.TempHigh, p.CheckInterval
	if err := validateConfig(next); err != nil {
		s.mu.Unlock()
		s.log.Warnw("config_update_rejected", "error", err, "temp_low", p.TempLow, "temp_high", p.TempHigh, "check_interval", p.CheckInterval)
		return err
	}
	prev := s.cfg
	s.cfg = next
	now := s.now()
	s.mu.Unlock()

	if s.store != nil {
		// The update is already live; a caller that goes away must not skip the save.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		err := s.store.Save(sctx, toStored(next))
		cancel()
		if err != nil {
			s.log.Errorw("config_save_failed", "error", err)
		}
	}
	s.log.Infow("config_updated", "temp_low", next.TempLow, "temp_high", next.TempHigh, "check_interval", next.CheckInterval)

	s.publish(ctx, []models.ControllerEvent{
		newEvent(now, models.EventConfigChange, "Configuration updated", map[string]any{
			"previous": toStored(prev),
			"current":  toStored(next),
		}),
	})
	return nil
}

// Control dispatches an operator action.
func (s *ControllerService) Control(ctx context.Context, action Action) error {
	switch action {
	case ActionStart:
		return s.SetRunning(ctx, true)
	case ActionStop:
		return s.SetRunning(ctx, false)
	case ActionRelayOn:
		return s.ForceRelay(ctx, true)
	case ActionRelayOff:
		return s.ForceRelay(ctx, false)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// SetRunning starts or stops automatic control. Starting clears a latched
// shutdown. Stopping always drives the relay off.
func (s *ControllerService) SetRunning(ctx context.Context, running bool) error {
	s.mu.Lock()
	now := s.now()
	var (
		events []models.ControllerEvent
		err    error
	)
	if running {
		if !s.running {
			wasShutdown := s.shutdown
			s.running, s.shutdown = true, false
			s.log.Infow("controller_started", "cleared_shutdown", wasShutdown)
			events = append(events, newEvent(now, models.EventStart, "Controller started",
				map[string]any{"cleared_shutdown": wasShutdown}))
		}
	} else {
		wasRunning, wasActive := s.running, s.relayActive
		s.running = false
		err = s.writeRelayLocked(false)
		if wasRunning {
			s.log.Infow("controller_stopped", "relay_was_active", wasActive)
			events = append(events, newEvent(now, models.EventStop, "Controller stopped",
				map[string]any{"relay_was_active": wasActive}))
		}
	}
	s.mu.Unlock()

	s.publish(ctx, events)
	return err
}

// ForceRelay sets the relay directly. Energizing is refused while the
// over-temperature shutdown is latched. Repeating the current state is a no-op.
func (s *ControllerService) ForceRelay(ctx context.Context, active bool) error {
	s.mu.Lock()
	if active && s.shutdown {
		s.mu.Unlock()
		return ErrShutdownLatched
	}
	changed := s.relayActive != active
	err := s.writeRelayLocked(active)
	var events []models.ControllerEvent
	if err == nil && changed {
		s.log.Infow("relay_switched", "active", active, "source", "manual")
		events = append(events, relayEvent(s.now(), active, "manual", s.temp))
	}
	s.mu.Unlock()

	s.publish(ctx, events)
	return err
}

// GetConfig returns the current configuration.
func (s *ControllerService) GetConfig() models.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// GetHistory returns the recorded samples, oldest first.
func (s *ControllerService) GetHistory() []models.DataPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Snapshot()
}

// Interval is the configured tick period.
func (s *ControllerService) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.cfg.CheckInterval) * time.Second
}

func (s *ControllerService) stateLocked() models.ControllerState {
	switch {
	case s.shutdown:
		return models.StateShutdown
	case !s.running:
		return models.StateIdle
	case s.relayActive:
		return models.StateRelayOn
	default:
		return models.StateRelayOff
	}
}

func (s *ControllerService) publish(ctx context.Context, events []models.ControllerEvent) {
	if len(events) == 0 || len(s.sinks) == 0 {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	for _, e := range events {
		for _, sink := range s.sinks {
			if err := sink.Publish(pctx, e); err != nil {
				s.log.Warnw("event_publish_failed", "type", e.Type, "error", err)
			}
		}
	}
}

func validateConfig(c models.Configuration) error {
	switch {
	case !(c.TempLow < c.TempHigh):
		return &ConfigError{Field: "temp_low", Reason: "must be below temp_high"}
	case !(c.TempLow >= c.MinTemp):
		return &ConfigError{Field: "temp_low", Reason: fmt.Sprintf("must be at least %.1f", c.MinTemp)}
	case !(c.TempHigh <= c.MaxTemp):
		return &ConfigError{Field: "temp_high", Reason: fmt.Sprintf("must be at most %.1f", c.MaxTemp)}
	case c.CheckInterval < MinCheckInterval || c.CheckInterval > MaxCheckInterval:
		return &ConfigError{Field: "check_interval", Reason: fmt.Sprintf("must be between %d and %d seconds", MinCheckInterval, MaxCheckInterval)}
	}
	return nil
}

func withStored(c models.Configuration, st models.StoredConfig) models.Configuration {
	c.TempLow, c.TempHigh, c.CheckInterval = st.TempLow, st.TempHigh, st.CheckInterval
	return c
}

func toStored(c models.Configuration) models.StoredConfig {
	return models.StoredConfig{TempLow: c.TempLow, TempHigh: c.TempHigh, CheckInterval: c.CheckInterval}
}

func newEvent(now time.Time, typ, desc string, meta map[string]any) models.ControllerEvent {
	return models.ControllerEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now,
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	}
}

func relayEvent(now time.Time, active bool, source string, temp float64) models.ControllerEvent {
	typ, desc := models.EventRelayOff, "Relay de-energized"
	if active {
		typ, desc = models.EventRelayOn, "Relay energized"
	}
	return newEvent(now, typ, desc, map[string]any{"source": source, "temperature": temp})
}
