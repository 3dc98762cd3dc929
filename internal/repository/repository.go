package repository

import (
	"context"
	"database/sql"
	"time"

	"thermo_relay/internal/models"
)

// OperatorStore keeps the accounts allowed to change the controller.
type OperatorStore interface {
	CreateOperator(ctx context.Context, username, passwordHash string) (int, error)
	OperatorByName(ctx context.Context, username string) (*models.Operator, error)
}

// ConfigStore persists the operator-editable part of the controller
// configuration. Load reports found=false when nothing has been stored yet.
type ConfigStore interface {
	Load(ctx context.Context) (cfg models.StoredConfig, found bool, err error)
	Save(ctx context.Context, cfg models.StoredConfig) error
}

// EventQuery selects controller events. Zero times leave that side of the
// range open. Limit > 0 keeps only the newest Limit matches.
type EventQuery struct {
	From  time.Time
	To    time.Time
	Type  string
	Limit int
}

// EventRepo is the append-only controller event log.
type EventRepo interface {
	Append(ctx context.Context, e models.ControllerEvent) error
	List(ctx context.Context, q EventQuery) ([]models.ControllerEvent, error)
}

type Repository struct {
	ConfigStore ConfigStore
	EventRepo   EventRepo
	Operators   OperatorStore
}

// NewRepository wires the SQLite-backed repositories. A non-nil store
// replaces the SQLite config table (e.g. the JSON file store).
func NewRepository(db *sql.DB, store ConfigStore) *Repository {
	if store == nil {
		store = NewConfigSQLite(db)
	}
	return &Repository{
		ConfigStore: store,
		EventRepo:   NewEventSQLite(db),
		Operators:   NewOperatorSQLite(db),
	}
}
