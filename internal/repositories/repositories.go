package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// checkAffected turns a zero-row write into notFound.
func checkAffected(result sql.Result, notFound error, key string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", notFound, key)
	}
	return nil
}

// scanErr maps sql.ErrNoRows to notFound.
func scanErr(err error, notFound error, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", notFound, key)
	}
	return fmt.Errorf("failed to scan row: %w", err)
}

type scanner interface {
	Scan(dest ...any) error
}
