package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/carelinkhq/carelink/internal/models"
)

// Config contains database connection options.
type Config struct {
	Driver   string
	Path     string // SQLite database path when Driver == sqlite
	DSN      string // Optional DSN override
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	Options  map[string]string
}

// Open initialises a gorm.DB using the provided configuration.
func Open(cfg Config) (*gorm.DB, error) {
	driver := strings.ToLower(cfg.Driver)
	if driver == "" {
		driver = "sqlite"
	}

	switch driver {
	case "sqlite":
		return openSQLite(cfg)
	case "postgres":
		return openPostgres(cfg)
	case "mysql":
		return openMySQL(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := db.AutoMigrate(
		&models.Provider{},
		&models.WaitlistEntry{},
	); err != nil {
		return err
	}

	return ensureActiveEmailIndex(db)
}

// ensureActiveEmailIndex installs a partial unique index so the database
// itself enforces at most one non-terminal waitlist entry per email.
// Terminal rows (registered, expired) stay out of the index so the address
// can re-apply. MySQL has no partial indexes; there the service-level
// duplicate check remains the only guard.
func ensureActiveEmailIndex(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
		return db.Exec(
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_waitlist_entries_active_email " +
				"ON waitlist_entries (email) WHERE status IN ('pending','invited')",
		).Error
	default:
		return nil
	}
}
