package database

import (
	"errors"
	"fmt"
	"net"

	"venue-booking/pkg/utils"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies all pending migrations from db/migrations.
func Migrate(config utils.DatabaseConfig) error {
	connStr := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		config.User,
		config.Password,
		net.JoinHostPort(config.Host, config.Port),
		config.Name,
	)

	mig, err := migrate.New("file://db/migrations", connStr)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
