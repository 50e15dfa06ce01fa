package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// FindByShopID returns the shop's subscription or nil when it never subscribed.
func FindByShopID(ctx context.Context, db *gorm.DB, shopID uint) (*Subscription, error) {
	var sub Subscription
	err := db.WithContext(ctx).Where("shop_id = ?", shopID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load subscription for shop %d: %w", shopID, err)
	}
	return &sub, nil
}

// ErrNotActive is returned when a subscription expected to be ACTIVE was
// already changed by someone else.
var ErrNotActive = errors.New("subscription is not active")

// CancelLocally flips an ACTIVE subscription to CANCELED with the given access
// window. The shop plan is left alone; the guard downgrades it once the
// window has passed. ErrNotActive means nothing was written.
func CancelLocally(ctx context.Context, db *gorm.DB, subID uint, accessUntil time.Time) error {
	res := db.WithContext(ctx).Model(&Subscription{}).
		Where("id = ? AND status = ?", subID, StatusActive).
		Updates(map[string]interface{}{
			"status":       StatusCanceled,
			"access_until": accessUntil,
		})
	if res.Error != nil {
		return fmt.Errorf("cancel subscription %d: %w", subID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotActive
	}
	return nil
}
