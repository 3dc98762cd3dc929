package repository

import (
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"thermo_relay/internal/repository/db"
)

var fixedCreated = time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

func newMockOperators(t *testing.T) (*OperatorSQLite, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		_ = conn.Close()
	})
	repo := NewOperatorSQLite(conn)
	repo.now = func() time.Time { return fixedCreated }
	return repo, mock
}

func TestOperatorSQLite_CreateOperator(t *testing.T) {
	cases := []struct {
		name    string
		expect  func(sqlmock.Sqlmock)
		wantID  int
		wantErr error
		wantMsg string
	}{
		{
			name: "success",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertOperatorSQL)).
					WithArgs("operator", "h123", "2026-03-01 08:30:00").
					WillReturnResult(sqlmock.NewResult(42, 1))
			},
			wantID: 42,
		},
		{
			name: "duplicate username",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertOperatorSQL)).
					WithArgs("operator", "h123", "2026-03-01 08:30:00").
					WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: operators.username (2067)"))
			},
			wantErr: ErrOperatorExists,
		},
		{
			name: "exec error",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertOperatorSQL)).
					WithArgs("operator", "h123", "2026-03-01 08:30:00").
					WillReturnError(errors.New("disk I/O error"))
			},
			wantMsg: "insert operator",
		},
		{
			name: "last insert id error",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertOperatorSQL)).
					WithArgs("operator", "h123", "2026-03-01 08:30:00").
					WillReturnResult(sqlmock.NewErrorResult(errors.New("no last id")))
			},
			wantMsg: "last insert id",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockOperators(t)
			tc.expect(mock)

			id, err := repo.CreateOperator(testCtx(t), "operator", "h123")
			switch {
			case tc.wantErr != nil:
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
			case tc.wantMsg != "":
				if err == nil || !strings.Contains(err.Error(), tc.wantMsg) {
					t.Fatalf("err = %v, want message containing %q", err, tc.wantMsg)
				}
				if errors.Is(err, ErrOperatorExists) {
					t.Fatalf("plain failure must not look like a duplicate: %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if id != tc.wantID {
					t.Fatalf("id = %d, want %d", id, tc.wantID)
				}
			}
		})
	}
}

func TestOperatorSQLite_OperatorByName(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMockOperators(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectOperatorByNameSQL)).
			WithArgs("operator").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
				AddRow(7, "operator", "h123", fixedCreated))

		op, err := repo.OperatorByName(testCtx(t), "operator")
		if err != nil {
			t.Fatalf("OperatorByName: %v", err)
		}
		if op == nil || op.ID != 7 || op.PasswordHash != "h123" || !op.CreatedAt.Equal(fixedCreated) {
			t.Fatalf("unexpected operator: %+v", op)
		}
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockOperators(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectOperatorByNameSQL)).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		op, err := repo.OperatorByName(testCtx(t), "ghost")
		if err != nil || op != nil {
			t.Fatalf("got (%+v, %v), want (nil, nil)", op, err)
		}
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newMockOperators(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectOperatorByNameSQL)).
			WithArgs("operator").
			WillReturnError(errors.New("db query failed"))

		if _, err := repo.OperatorByName(testCtx(t), "operator"); err == nil || !strings.Contains(err.Error(), "select operator") {
			t.Fatalf("err = %v", err)
		}
	})

}

func TestOperatorSQLite_UniqueAgainstRealDatabase(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "ops.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()
	repo := NewOperatorSQLite(conn)

	if _, err := repo.CreateOperator(testCtx(t), "operator", "h1"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := repo.CreateOperator(testCtx(t), "Operator", "h2"); !errors.Is(err, ErrOperatorExists) {
		t.Fatalf("case-insensitive duplicate: err = %v, want ErrOperatorExists", err)
	}
	op, err := repo.OperatorByName(testCtx(t), "OPERATOR")
	if err != nil || op == nil || op.PasswordHash != "h1" {
		t.Fatalf("lookup = (%+v, %v)", op, err)
	}
}
