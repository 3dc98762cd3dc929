package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"thermo_relay/internal/models"
)

// Keys of the JSON config file.
const (
	keyTempLow       = "temp_low"
	keyTempHigh      = "temp_high"
	keyCheckInterval = "check_interval"
)

var errIncompleteConfig = errors.New("config file is missing required keys")

// ConfigFile stores the configuration as a flat JSON document, e.g.
//
//	{"temp_low": 20, "temp_high": 25, "check_interval": 5}
type ConfigFile struct {
	path string
	mu   sync.Mutex
}

var _ ConfigStore = (*ConfigFile)(nil)

// NewConfigFile returns a store backed by path. The path must end in .json.
func NewConfigFile(path string) *ConfigFile {
	return &ConfigFile{path: path}
}

// Path returns the backing file.
func (f *ConfigFile) Path() string { return f.path }

// Load reads the file. A missing file reports found=false.
func (f *ConfigFile) Load(_ context.Context) (models.StoredConfig, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := os.Stat(f.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.StoredConfig{}, false, nil
		}
		return models.StoredConfig{}, false, fmt.Errorf("stat %q: %w", f.path, err)
	}

	v := viper.New()
	v.SetConfigFile(f.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return models.StoredConfig{}, false, fmt.Errorf("read %q: %w", f.path, err)
	}
	for _, k := range []string{keyTempLow, keyTempHigh, keyCheckInterval} {
		if !v.IsSet(k) {
			return models.StoredConfig{}, false, fmt.Errorf("%w: %s", errIncompleteConfig, k)
		}
	}

	return models.StoredConfig{
		TempLow:       v.GetFloat64(keyTempLow),
		TempHigh:      v.GetFloat64(keyTempHigh),
		CheckInterval: v.GetInt(keyCheckInterval),
	}, true, nil
}

// Save writes the file through a temporary sibling and a rename, so a crash
// never leaves a truncated document behind.
func (f *ConfigFile) Save(_ context.Context, cfg models.StoredConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := viper.New()
	v.SetConfigType("json")
	v.Set(keyTempLow, cfg.TempLow)
	v.Set(keyTempHigh, cfg.TempHigh)
	v.Set(keyCheckInterval, cfg.CheckInterval)

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	ext := filepath.Ext(f.path)
	tmp := strings.TrimSuffix(f.path, ext) + ".tmp" + ext
	if err := v.WriteConfigAs(tmp); err != nil {
		return fmt.Errorf("write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %q: %w", f.path, err)
	}
	return nil
}
