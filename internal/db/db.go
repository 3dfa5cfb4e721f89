package db

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/roayati/clubs/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLiteDSN appends the pragmas the app relies on to a database file path.
func SQLiteDSN(path string) string {
	return path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}

// Open connects, tunes the pool for the driver and migrates the schema.
func Open(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, errors.Errorf("unknown database driver %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, errors.Wrap(err, "database handle")
	}
	if driver == DriverPostgres {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite works best with a single writer; cap the pool accordingly.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}

	log.Info("database ready", zap.String("driver", dialector.Name()))
	return conn, nil
}

// Migrate creates or updates every table the app owns.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.Club{},
		&models.Term{},
		&models.Family{},
		&models.Student{},
		&models.Invoice{},
		&models.InvoiceLine{},
		&models.Registration{},
		&models.AuditEntry{},
	); err != nil {
		return errors.Wrap(err, "auto-migrate")
	}

	// Composite indexes that GORM doesn't auto-create from struct tags.
	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS idx_reg_term_state ON registrations(term_id, state)",
		"CREATE INDEX IF NOT EXISTS idx_term_club_dates ON terms(club_id, date_from, date_to)",
	} {
		if err := conn.Exec(stmt).Error; err != nil {
			return errors.Wrap(err, "create index")
		}
	}
	return nil
}
