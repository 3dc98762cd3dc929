package sensor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSlave(t *testing.T, dir, device, body string) string {
	t.Helper()
	devDir := filepath.Join(dir, device)
	if err := os.MkdirAll(devDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(devDir, "w1_slave")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestW1Probe_ReadRaw(t *testing.T) {
	dir := t.TempDir()
	path := writeSlave(t, dir, "28-0316a279c3ff",
		"72 01 4b 46 7f ff 0e 10 57 : crc=57 YES\n72 01 4b 46 7f ff 0e 10 57 t=23125\n")

	p, err := NewW1Probe(filepath.Join(dir, "28-*", "w1_slave"))
	if err != nil {
		t.Fatalf("NewW1Probe: %v", err)
	}
	if p.Path() != path {
		t.Fatalf("path = %q, want %q", p.Path(), path)
	}
	got, err := p.ReadRaw()
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if got != 23.125 {
		t.Fatalf("got %v, want 23.125", got)
	}
}

func TestW1Probe_NoDevice(t *testing.T) {
	_, err := NewW1Probe(filepath.Join(t.TempDir(), "28-*", "w1_slave"))
	if !errors.Is(err, errNoDevice) {
		t.Fatalf("expected errNoDevice, got %v", err)
	}
}

func TestW1Probe_DeviceRemoved(t *testing.T) {
	dir := t.TempDir()
	path := writeSlave(t, dir, "28-aa", "x : crc=00 YES\nx t=1000\n")
	p, err := NewW1Probe(filepath.Join(dir, "28-*", "w1_slave"))
	if err != nil {
		t.Fatalf("NewW1Probe: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := p.ReadRaw(); err == nil {
		t.Fatal("expected error after device removal")
	}
}

func TestParseW1Slave(t *testing.T) {
	cases := []struct {
		name    string
		lines   []string
		want    float64
		wantErr error
	}{
		{name: "positive", lines: []string{"aa : crc=57 YES", "aa t=23125"}, want: 23.125},
		{name: "negative", lines: []string{"aa : crc=57 YES", "aa t=-1250"}, want: -1.25},
		{name: "crc_fail", lines: []string{"aa : crc=57 NO", "aa t=23125"}, wantErr: errCRC},
		{name: "short", lines: []string{"aa : crc=57 YES"}, wantErr: errBadPayload},
		{name: "missing_t", lines: []string{"aa : crc=57 YES", "aa"}, wantErr: errBadPayload},
		{name: "garbage_t", lines: []string{"aa : crc=57 YES", "aa t=abc"}, wantErr: errBadPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseW1Slave(tc.lines)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
