package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"thermo_relay/internal/logger"
	"thermo_relay/internal/models"
)

type fakeTicker struct {
	mu        sync.Mutex
	ticks     int
	interval  time.Duration
	deadlines []bool
	onTick    func(n int)
}

func (f *fakeTicker) Tick(ctx context.Context) {
	f.mu.Lock()
	f.ticks++
	n := f.ticks
	_, ok := ctx.Deadline()
	f.deadlines = append(f.deadlines, ok)
	cb := f.onTick
	f.mu.Unlock()
	if cb != nil {
		cb(n)
	}
}

func (f *fakeTicker) Interval() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interval
}

func (f *fakeTicker) GetStatus(context.Context) models.StatusView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.StatusView{TotalReadings: uint64(f.ticks)}
}

type fakeStatusSink struct {
	mu    sync.Mutex
	views []models.StatusView
	err   error
}

func (f *fakeStatusSink) PublishStatus(_ context.Context, v models.StatusView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, v)
	return f.err
}

func TestScheduler_TicksUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ft := &fakeTicker{interval: time.Millisecond}
	ft.onTick = func(n int) {
		if n == 5 {
			cancel()
		}
	}
	sink := &fakeStatusSink{}
	s := NewSchedulerService(ft, sink, 0, logger.Nop())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	ft.mu.Lock()
	defer ft.mu.Unlock()
	if ft.ticks != 5 {
		t.Fatalf("ticks = %d, want 5", ft.ticks)
	}
	for i, ok := range ft.deadlines {
		if !ok {
			t.Fatalf("tick %d ran without a deadline", i)
		}
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.views) != 4 {
		t.Fatalf("status published %d times, want 4 (none after cancel)", len(sink.views))
	}
}

func TestScheduler_FirstTickIsImmediate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ft := &fakeTicker{interval: time.Hour}
	ticked := make(chan struct{}, 1)
	ft.onTick = func(int) { ticked <- struct{}{} }

	go NewSchedulerService(ft, nil, time.Second, nil).Run(ctx)

	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("first tick should not wait for the interval")
	}
}

func TestScheduler_PicksUpIntervalChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ft := &fakeTicker{interval: time.Hour}
	ft.onTick = func(n int) {
		if n == 1 {
			// simulate a config update before the next wait starts
			ft.mu.Lock()
			ft.interval = time.Millisecond
			ft.mu.Unlock()
		}
		if n == 3 {
			cancel()
		}
	}

	done := make(chan struct{})
	go func() {
		NewSchedulerService(ft, nil, 0, logger.Nop()).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("new interval was not applied")
	}
}

func TestScheduler_StatusPublishErrorIgnored(t *testing.T) {
	ft := &fakeTicker{interval: time.Second}
	sink := &fakeStatusSink{err: errors.New("broker offline")}
	s := NewSchedulerService(ft, sink, 0, logger.Nop())

	s.runTick(context.Background())
	s.runTick(context.Background())

	if ft.ticks != 2 || len(sink.views) != 2 {
		t.Fatalf("ticks=%d views=%d", ft.ticks, len(sink.views))
	}
}
