package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"thermo_relay/internal/models"
)

func TestConfigFile_MissingFile(t *testing.T) {
	store := NewConfigFile(filepath.Join(t.TempDir(), "config.json"))

	_, found, err := store.Load(testCtx(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Fatal("expected found=false for a missing file")
	}
}

func TestConfigFile_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "config.json")
	store := NewConfigFile(path)
	want := models.StoredConfig{TempLow: 60, TempHigh: 70, CheckInterval: 5}

	if err := store.Save(testCtx(t), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "config.tmp.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temporary file should be renamed away, stat err = %v", err)
	}

	got, found, err := store.Load(testCtx(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found || got != want {
		t.Fatalf("got (%+v, %v), want (%+v, true)", got, found, want)
	}
}

func TestConfigFile_ReadsOriginalLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{"temp_low": 20.0, "temp_high": 25.0, "check_interval": 5}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	got, found, err := NewConfigFile(path).Load(testCtx(t))
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if got.TempLow != 20 || got.TempHigh != 25 || got.CheckInterval != 5 {
		t.Fatalf("unexpected config %+v", got)
	}
}

func TestConfigFile_Invalid(t *testing.T) {
	cases := map[string]string{
		"malformed":   `{"temp_low": `,
		"missing key": `{"temp_low": 20, "temp_high": 25}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, err := NewConfigFile(path).Load(testCtx(t)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
