package queries

import (
	"context"
	"database/sql"
	"errors"

	"go.faceguard.dev/faceguard/db/types"
)

// APITokenHash retrieves the hash of the HTTP API token from the database. It
// returns an error if it is missing.
func APITokenHash(ctx context.Context, d types.Querier) ([]byte, error) {
	var hash sql.Null[[]byte]
	err := d.QueryRowContext(ctx, `SELECT api_token_hash FROM _meta`).Scan(&hash)
	if err != nil {
		return nil, err
	}

	if !hash.Valid {
		return nil, errors.New("API token hash not found")
	}

	return hash.V, nil
}

// Version returns the application version the database was initialized with.
// If the returned sql.Null value is invalid, it indicates that the database
// hasn't been initialized.
func Version(ctx context.Context, d types.Querier) (sql.Null[string], error) {
	var version sql.Null[string]
	err := d.QueryRowContext(ctx, `SELECT version FROM _meta`).
		Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return version, err
	}

	return version, nil
}
