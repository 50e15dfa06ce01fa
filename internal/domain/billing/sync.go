package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopnotes-app/internal/domain/plans"
	"shopnotes-app/internal/domain/shops"

	"gorm.io/gorm"
)

type ActivateParams struct {
	ChargeID    int64
	Name        string
	Price       float64
	TrialEndsAt *time.Time
	RenewsAt    *time.Time
}

// Activate records an accepted charge: the shop's single subscription row is
// (re)set to ACTIVE with a fresh billing anchor and the shop moves to PRO,
// both in one transaction.
func Activate(ctx context.Context, db *gorm.DB, shopID uint, p ActivateParams, now time.Time) (*Subscription, error) {
	var sub Subscription
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("shop_id = ?", shopID).First(&sub).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		sub.ShopID = shopID
		sub.Status = StatusActive
		sub.ShopifySubGID = ChargeGID(p.ChargeID)
		sub.Name = p.Name
		sub.Price = p.Price
		sub.CreatedAt = now
		sub.TrialEndsAt = p.TrialEndsAt
		sub.RenewsAt = p.RenewsAt
		sub.AccessUntil = nil
		sub.GraceEndsAt = nil

		if err := tx.Save(&sub).Error; err != nil {
			return err
		}

		return tx.Model(&shops.Shop{}).
			Where("id = ?", shopID).
			Update("plan", plans.Pro).Error
	})
	if err != nil {
		return nil, fmt.Errorf("activate subscription for shop %d: %w", shopID, err)
	}
	return &sub, nil
}

// MarkCanceledRemotely applies a cancellation that happened on Shopify's side
// (merchant, webhook or reconcile). An ACTIVE row becomes CANCELED with the
// same paid-through window the cancel endpoint grants. Already canceled rows
// are left untouched. It reports whether a row changed.
func MarkCanceledRemotely(ctx context.Context, db *gorm.DB, shopID uint, now time.Time) (bool, error) {
	sub, err := FindByShopID(ctx, db, shopID)
	if err != nil || sub == nil {
		return false, err
	}
	if sub.Status != StatusActive {
		return false, nil
	}

	accessUntil := ComputeAccessUntil(now, *sub)
	res := db.WithContext(ctx).Model(&Subscription{}).
		Where("id = ? AND status = ?", sub.ID, StatusActive).
		Updates(map[string]interface{}{
			"status":        StatusCanceled,
			"access_until":  accessUntil,
			"grace_ends_at": accessUntil,
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark subscription %d canceled: %w", sub.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
