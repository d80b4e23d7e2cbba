// Package dbhelper implements the service repositories on Postgres.
package dbhelper

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/services"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db *sql.DB
}

var (
	_ services.OrderRepository      = (*Store)(nil)
	_ services.TableRepository      = (*Store)(nil)
	_ services.MenuRepository       = (*Store)(nil)
	_ services.BillRepository       = (*Store)(nil)
	_ services.RestaurantRepository = (*Store)(nil)
	_ services.UserRepository       = (*Store)(nil)
	_ services.WaiterCallRepository = (*Store)(nil)
	_ services.ReportRepository     = (*Store)(nil)
)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// mapErr translates driver errors into the sentinel errors services match on.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s already exists", models.ErrConflict, what)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s is referenced by or references missing rows", models.ErrConflict, what)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// affected turns a zero-row write into models.ErrNotFound.
func affected(res sql.Result, err error, what string) error {
	if err != nil {
		return mapErr(err, what)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}

// jsonb encodes v for a JSONB parameter. lib/pq sends []byte as bytea, so the
// document goes over the wire as text.
func jsonb(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode jsonb: %w", err)
	}
	return string(b), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
