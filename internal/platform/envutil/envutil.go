package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

// String returns the env value for key, or def when unset.
func String(key, def string, log *logger.Logger) string {
	if log != nil {
		log = log.With("env_var", key)
	}
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", def)
		}
		return def
	}
	return strings.TrimSpace(val)
}

func Int(key string, def int, log *logger.Logger) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable could not be parsed as int, using default", "env_var", key, "value", raw, "default", def)
		}
		return def
	}
	return i
}

func Bool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// Seconds reads an integer number of seconds.
func Seconds(key string, def time.Duration, log *logger.Logger) time.Duration {
	secs := Int(key, int(def/time.Second), log)
	if secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

// List splits a comma separated value, dropping blanks.
func List(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	out := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
