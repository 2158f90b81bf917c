package app

import (
	"fmt"

	"github.com/yungbote/nishad-backend/internal/platform/gcp"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/platform/qrcode"
	"github.com/yungbote/nishad-backend/internal/realtime/bus"
)

type Clients struct {
	Bucket   gcp.BucketService
	Renderer *qrcode.CardRenderer
	// Bus is nil when REDIS_ADDR is unset; notifications then stay in-process.
	Bus bus.Bus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	bucket, err := resolveBucketService(log)
	if err != nil {
		return Clients{}, err
	}

	renderer, err := qrcode.NewCardRenderer(cfg.PassCardFont)
	if err != nil {
		return Clients{}, fmt.Errorf("init pass card renderer: %w", err)
	}

	var b bus.Bus
	if cfg.RedisAddr != "" {
		b, err = bus.NewRedisBus(log, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis notification bus: %w", err)
		}
	}

	return Clients{Bucket: bucket, Renderer: renderer, Bus: b}, nil
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}
