package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"thermo_relay/internal/models"
)

// ErrOperatorExists is returned when the username is already registered.
var ErrOperatorExists = errors.New("operator already exists")

type OperatorSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewOperatorSQLite(db *sql.DB) *OperatorSQLite {
	return &OperatorSQLite{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ OperatorStore = (*OperatorSQLite)(nil)

const (
	insertOperatorSQL       = `INSERT INTO operators (username, password_hash, created_at) VALUES (?, ?, ?)`
	selectOperatorByNameSQL = `SELECT id, username, password_hash, created_at FROM operators WHERE username = ?`
)

// CreateOperator inserts an account and returns its id.
func (r *OperatorSQLite) CreateOperator(ctx context.Context, username, passwordHash string) (int, error) {
	res, err := r.db.ExecContext(ctx, insertOperatorSQL, username, passwordHash, r.now().Format(sqliteTimestamp))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %q", ErrOperatorExists, username)
		}
		return 0, fmt.Errorf("insert operator %q: %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id for operator %q: %w", username, err)
	}
	return int(id), nil
}

// OperatorByName returns the account or (nil, nil) when there is none.
// Usernames compare case-insensitively.
func (r *OperatorSQLite) OperatorByName(ctx context.Context, username string) (*models.Operator, error) {
	var op models.Operator
	err := r.db.QueryRowContext(ctx, selectOperatorByNameSQL, username).
		Scan(&op.ID, &op.Username, &op.PasswordHash, &op.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("select operator %q: %w", username, err)
	}
	op.CreatedAt = op.CreatedAt.UTC()
	return &op, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// Without extended result codes only the message tells UNIQUE apart.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
