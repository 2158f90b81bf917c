package bus

import (
	"testing"

	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

func TestNewRedisBusRequiresAddress(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	if _, err := NewRedisBus(log, "  ", ""); err == nil {
		t.Fatalf("expected error for empty address")
	}
	if _, err := NewRedisBus(nil, "localhost:6379", ""); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}
