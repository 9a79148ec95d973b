package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolationCode is the postgres SQLSTATE for unique constraint errors
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (duplicate email, slug or sku).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// requireRowsAffected maps a zero-row write to the aggregate's not-found
// sentinel so callers can distinguish "absent" from "error".
func requireRowsAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
