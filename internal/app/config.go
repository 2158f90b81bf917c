package app

import (
	"time"

	"github.com/yungbote/nishad-backend/internal/platform/envutil"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	DBDriver   string
	SQLitePath string
	TxTimeout  time.Duration

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	MaxCodeAttempts int
	PassCardFont    string

	RedisAddr    string
	RedisChannel string

	CORSOrigins []string
	MetricsAddr string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:        envutil.String("PORT", "8080", log),
		Environment: envutil.String("APP_ENV", "development", log),
		Version:     envutil.String("APP_VERSION", "dev", log),

		DBDriver:   envutil.String("DB_DRIVER", "postgres", log),
		SQLitePath: envutil.String("SQLITE_PATH", "", log),
		TxTimeout:  envutil.Seconds("DB_TX_TIMEOUT", 10*time.Second, log),

		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour, log),
		RefreshTokenTTL: envutil.Seconds("REFRESH_TOKEN_TTL", 7*24*time.Hour, log),

		MaxCodeAttempts: envutil.Int("CODEGEN_MAX_ATTEMPTS", 5, log),
		PassCardFont:    envutil.String("PASS_CARD_FONT", "", log),

		RedisAddr:    envutil.String("REDIS_ADDR", "", log),
		RedisChannel: envutil.String("REDIS_CHANNEL", "nishad:notifications", log),

		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),
		MetricsAddr: envutil.String("METRICS_ADDR", "", log),
	}
}
