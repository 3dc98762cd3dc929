package relay

import (
	"errors"
	"testing"
)

func TestFakeDriverWrite(t *testing.T) {
	f := NewFakeDriver()

	if err := f.Write(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Active {
		t.Error("expected Active after Write(true)")
	}
	if err := f.Write(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Active {
		t.Error("expected inactive after Write(false)")
	}
	if f.WriteCount() != 2 {
		t.Errorf("expected 2 writes, got %d", f.WriteCount())
	}
}

func TestFakeDriverWriteError(t *testing.T) {
	f := NewFakeDriver()
	f.WriteError = errors.New("simulated error")

	if err := f.Write(true); err == nil || err.Error() != "simulated error" {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Active {
		t.Error("failed write must not change Active")
	}
	if f.WriteCount() != 1 {
		t.Errorf("failed write should still be recorded, got %d", f.WriteCount())
	}
}

func TestFakeDriverCloseAndReset(t *testing.T) {
	f := NewFakeDriver()
	_ = f.Write(true)

	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Closed || f.Active {
		t.Errorf("after Close: closed=%v active=%v", f.Closed, f.Active)
	}

	f.Reset()
	if f.Closed || f.WriteCount() != 0 {
		t.Errorf("after Reset: closed=%v writes=%d", f.Closed, f.WriteCount())
	}
}

var _ Driver = (*FakeDriver)(nil)
var _ Driver = (*GPIODriver)(nil)
