package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/nishad-backend/internal/platform/envutil"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(logg *logger.Logger) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")

	dsn := envutil.String("POSTGRES_DSN", "", logg)
	if dsn == "" {
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			envutil.String("POSTGRES_USER", "postgres", logg),
			os.Getenv("POSTGRES_PASSWORD"),
			envutil.String("POSTGRES_HOST", "localhost", logg),
			envutil.String("POSTGRES_PORT", "5432", logg),
			envutil.String("POSTGRES_NAME", "nishad", logg),
			envutil.String("POSTGRES_SSLMODE", "disable", logg),
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20, logg))
	sqlDB.SetMaxIdleConns(envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5, logg))
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Running postgres auto migration")
	return AutoMigrateAll(s.db)
}

func gormConfig() *gorm.Config {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}
}
