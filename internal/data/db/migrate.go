package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/nishad-backend/internal/domain"
)

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		// identity + delegation
		&types.User{},
		&types.GatePassDelegation{},
		&types.UserToken{},

		// assets
		&types.Asset{},
		&types.AssetCheckout{},
		&types.AssetMaintenance{},
		&types.AssetEvent{},

		// events + gate passes
		&types.Event{},
		&types.EventPass{},
		&types.VisitorPass{},
		&types.GatePassLog{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	// Partial indexes are understood by both Postgres and SQLite.
	// Backstop for the row-lock discipline in the checkout aggregate.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_asset_checkout_open
		ON asset_checkout(asset_id)
		WHERE status IN ('PENDING', 'ACCEPTED', 'IN_USE');
	`).Error; err != nil {
		return fmt.Errorf("create uniq_asset_checkout_open: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_asset_event_asset_created ON asset_event(asset_id, created_at);`).Error; err != nil {
		return fmt.Errorf("create idx_asset_event_asset_created: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_gatepass_log_pass_created ON gatepass_log(visitor_pass_id, created_at);`).Error; err != nil {
		return fmt.Errorf("create idx_gatepass_log_pass_created: %w", err)
	}
	return nil
}
