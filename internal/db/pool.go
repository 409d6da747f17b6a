package db

import (
	"context"
	"fmt"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NewDBPoolParams struct {
	DBHost         string
	DBPort         string
	DBName         string
	DBPassword     string
	TracingEnabled bool
}

// DatabaseURL builds a postgres connection URL for the given server
// and database, with the password left out when empty.
func DatabaseURL(host, port, dbName, password string) string {
	if password != "" {
		return fmt.Sprintf(
			"postgres://postgres:%s@%s:%s/%s?sslmode=disable",
			password, host, port, dbName,
		)
	}
	return fmt.Sprintf(
		"postgres://postgres@%s:%s/%s?sslmode=disable",
		host, port, dbName,
	)
}

func NewDBPool(ctx context.Context, params NewDBPoolParams) (*pgxpool.Pool, error) {
	connString := DatabaseURL(params.DBHost, params.DBPort, params.DBName, params.DBPassword)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if params.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return pool, nil
}
