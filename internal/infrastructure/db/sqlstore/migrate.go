package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bizledger/records-api/internal/core/domain"
)

// Migrate creates or updates the schema and seeds the roles reference table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&roleRow{}, &identityRow{}, &customerRow{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	roles := make([]roleRow, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		roles = append(roles, roleRow{Name: string(r), Label: r.Label()})
	}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}
