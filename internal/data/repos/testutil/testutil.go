package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	appdb "github.com/yungbote/nishad-backend/internal/data/db"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a freshly migrated database private to the calling test.
// TEST_POSTGRES_DSN selects Postgres; otherwise an in-memory SQLite
// database pinned to a single connection is used.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}

	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			tb.Fatalf("open postgres: %v", err)
		}
		if err := appdb.AutoMigrateAll(db); err != nil {
			tb.Fatalf("migrate postgres: %v", err)
		}
		tb.Cleanup(func() { truncateAll(tb, db) })
		return db
	}

	name := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(name), cfg)
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := appdb.AutoMigrateAll(db); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Tx opens a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func truncateAll(tb testing.TB, db *gorm.DB) {
	tb.Helper()
	stmt := &gorm.Statement{DB: db}
	for _, m := range appdb.Models() {
		if err := stmt.Parse(m); err != nil {
			continue
		}
		_ = db.Exec(fmt.Sprintf(`TRUNCATE TABLE %q CASCADE`, stmt.Schema.Table)).Error
	}
}
