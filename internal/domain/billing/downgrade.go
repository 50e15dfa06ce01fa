package billing

import (
	"context"
	"errors"
	"fmt"

	"shopnotes-app/internal/domain/plans"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/logger"

	"gorm.io/gorm"
)

// DowngradeShopToFreeByDomain sets the shop to FREE and cancels all of its
// subscriptions in one transaction. No grace window is granted.
func DowngradeShopToFreeByDomain(ctx context.Context, db *gorm.DB, domain string) error {
	log := logger.WithComponent("downgrade").With("shop", domain)

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shop shops.Shop
		err := tx.Where("domain = ?", domain).First(&shop).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("shop not found, nothing to downgrade")
			return nil
		}
		if err != nil {
			return fmt.Errorf("load shop %s: %w", domain, err)
		}

		if err := tx.Model(&shops.Shop{}).
			Where("id = ?", shop.ID).
			Update("plan", plans.Free).Error; err != nil {
			return fmt.Errorf("downgrade shop %s: %w", domain, err)
		}

		res := tx.Model(&Subscription{}).
			Where("shop_id = ?", shop.ID).
			Update("status", StatusCanceled)
		if res.Error != nil {
			return fmt.Errorf("cancel subscriptions for %s: %w", domain, res.Error)
		}

		log.Info("shop downgraded to FREE", "subscriptions_canceled", res.RowsAffected)
		return nil
	})
}
