package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopnotes-app/internal/domain/plans"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/logger"

	"gorm.io/gorm"
)

// EnsurePlanAlignedWithSubscription corrects plan drift for domain: a PRO shop
// whose subscription no longer entitles it (missing, or CANCELED with the
// access window over) is set back to FREE. It reports whether it changed
// anything. Repeated calls on unchanged state are no-ops.
func EnsurePlanAlignedWithSubscription(ctx context.Context, db *gorm.DB, domain string, now time.Time) (bool, error) {
	log := logger.WithComponent("plan-guard").With("shop", domain)

	shop, err := shops.FindByDomain(ctx, db, domain)
	if errors.Is(err, shops.ErrShopNotFound) {
		log.Warn("shop not found, skipping plan alignment")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if shop.Plan != plans.Pro {
		return false, nil
	}

	sub, err := FindByShopID(ctx, db, shop.ID)
	if err != nil {
		return false, err
	}
	if sub.Entitles(now) {
		return false, nil
	}

	res := db.WithContext(ctx).Model(&shops.Shop{}).
		Where("id = ? AND plan = ?", shop.ID, plans.Pro).
		Update("plan", plans.Free)
	if res.Error != nil {
		return false, fmt.Errorf("align plan for %s: %w", domain, res.Error)
	}

	status := "none"
	if sub != nil {
		status = string(sub.Status)
	}
	log.Info("plan drift corrected, downgraded to FREE", "subscription_status", status)
	return res.RowsAffected > 0, nil
}
