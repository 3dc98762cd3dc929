package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"thermo_relay/internal/models"
)

// ConfigSQLite stores the configuration in a single-row table.
type ConfigSQLite struct {
	db *sql.DB
}

func NewConfigSQLite(db *sql.DB) *ConfigSQLite {
	return &ConfigSQLite{db: db}
}

var _ ConfigStore = (*ConfigSQLite)(nil)

const (
	controllerConfigRowID = 1

	upsertConfigSQL = `
		INSERT INTO controller_config (id, temp_low, temp_high, check_interval, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			temp_low=excluded.temp_low,
			temp_high=excluded.temp_high,
			check_interval=excluded.check_interval,
			updated_at=excluded.updated_at
	`

	selectConfigSQL = `
		SELECT temp_low, temp_high, check_interval
		FROM controller_config WHERE id=?
	`
)

// Save upserts the controller_config row (id always 1).
func (r *ConfigSQLite) Save(ctx context.Context, cfg models.StoredConfig) error {
	_, err := r.db.ExecContext(ctx, upsertConfigSQL,
		controllerConfigRowID,
		cfg.TempLow,
		cfg.TempHigh,
		cfg.CheckInterval,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save controller config: %w", err)
	}
	return nil
}

// Load fetches the controller_config row. A missing row is not an error.
func (r *ConfigSQLite) Load(ctx context.Context) (models.StoredConfig, bool, error) {
	var cfg models.StoredConfig
	err := r.db.QueryRowContext(ctx, selectConfigSQL, controllerConfigRowID).
		Scan(&cfg.TempLow, &cfg.TempHigh, &cfg.CheckInterval)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StoredConfig{}, false, nil
		}
		return models.StoredConfig{}, false, fmt.Errorf("load controller config: %w", err)
	}
	return cfg, true, nil
}
