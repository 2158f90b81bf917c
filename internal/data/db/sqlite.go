package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

// OpenSQLite opens a SQLite database for local development. SQLite has no row
// locks, so the pool is pinned to one connection and writers serialize.
func OpenSQLite(logg *logger.Logger, path string) (*gorm.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "file:nishad?mode=memory&cache=shared"
	}
	if logg != nil {
		logg.Info("Opening sqlite database", "path", path)
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	return db, nil
}

// Open picks the driver named by driver ("postgres" or "sqlite").
func Open(logg *logger.Logger, driver, sqlitePath string) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return OpenSQLite(logg, sqlitePath)
	case "", "postgres", "postgresql":
		pg, err := NewPostgresService(logg)
		if err != nil {
			return nil, err
		}
		return pg.DB(), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}
