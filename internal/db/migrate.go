package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"sakubijak/internal/config"
	"sakubijak/internal/log"
	"sakubijak/internal/model"
)

//go:embed migrations/mysql/*.sql
var mysqlMigrationsFS embed.FS

// tables lists the models in dependency order: parents first.
var tables = []interface{}{
	&model.User{},
	&model.Category{},
	&model.Transaction{},
}

// Migrate brings the schema up to date. MySQL uses the versioned SQL
// migrations embedded in the binary; PostgreSQL and SQLite use GORM's
// AutoMigrate with the constraints declared on the models.
func Migrate(gormDB *gorm.DB, driver, dsn string) error {
	if driver == config.DriverMySQL {
		return RunMySQLMigrations(dsn)
	}
	return AutoMigrate(gormDB)
}

// AutoMigrate creates or alters tables from the model definitions.
func AutoMigrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// RunMySQLMigrations applies the embedded migrations over a dedicated
// connection so closing the migrator does not close the application pool.
func RunMySQLMigrations(dsn string) error {
	migrateDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratemysql.WithInstance(migrateDB, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("create mysql migrate driver: %w", err)
	}

	source, err := iofs.New(mysqlMigrationsFS, "migrations/mysql")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	slog.Info("migrations applied", log.FieldComponent, log.ComponentStorage, "version", version, "dirty", dirty)
	return nil
}

// DropAll drops every application table, children first. Backs RESET_DB.
func DropAll(gormDB *gorm.DB) error {
	for i := len(tables) - 1; i >= 0; i-- {
		if err := gormDB.Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	// The migration bookkeeping table only exists on MySQL.
	if gormDB.Migrator().HasTable("schema_migrations") {
		if err := gormDB.Migrator().DropTable("schema_migrations"); err != nil {
			return fmt.Errorf("drop schema_migrations: %w", err)
		}
	}
	return nil
}
