package service

import (
	"context"
	"testing"

	"thermo_relay/internal/models"
	"thermo_relay/internal/relay"
	"thermo_relay/internal/repository"
	"thermo_relay/internal/sensor"
)

func TestNewService_WiresControllerToEventLogAndSinks(t *testing.T) {
	events := &fakeEventRepo{}
	extra := &recordingSink{}
	repos := &repository.Repository{
		ConfigStore: &memStore{},
		EventRepo:   events,
		Operators:   newMemOperators(),
	}
	drv := relay.NewFakeDriver()
	reader := sensor.NewReader(sensor.NewFakeProbe(18), sensor.Options{})

	svc := NewService(context.Background(), repos, Deps{Reader: reader, Relay: drv, Sinks: []EventSink{extra}},
		Options{Controller: ControllerOptions{MonitorWhenStopped: true}, Auth: testAuthOptions})

	if svc.Controller == nil || svc.Monitoring == nil || svc.EventLog == nil || svc.Scheduler == nil || svc.Authorization == nil {
		t.Fatalf("service not fully wired: %+v", svc)
	}

	if err := svc.Control(context.Background(), ActionStop); err != nil {
		t.Fatalf("Control(stop): %v", err)
	}
	if len(events.appended) != 1 || events.appended[0].Type != models.EventStop {
		t.Fatalf("event log got %+v, want one STOP", events.appended)
	}
	if extra.count(models.EventStop) != 1 {
		t.Fatalf("extra sink got %v", extra.types())
	}
	if got := svc.GetStatus(context.Background()).State; got != models.StateIdle {
		t.Fatalf("state = %s, want IDLE", got)
	}
}
