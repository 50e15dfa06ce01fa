package shops

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopnotes-app/internal/domain/plans"

	"gorm.io/gorm"
)

var ErrShopNotFound = errors.New("shop not found")

// FindByDomain loads a shop by its normalized domain.
// IMPORTANT: pass db in, do NOT import shopnotes-app/database here (avoids import cycle).
func FindByDomain(ctx context.Context, db *gorm.DB, domain string) (*Shop, error) {
	var shop Shop
	err := db.WithContext(ctx).Where("domain = ?", domain).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load shop %s: %w", domain, err)
	}
	return &shop, nil
}

// EnsureShop returns the shop row for domain, creating it on FREE when this is
// the first authenticated request for the store.
func EnsureShop(ctx context.Context, db *gorm.DB, domain string) (*Shop, error) {
	shop := Shop{Domain: domain, Plan: plans.Free}
	if err := db.WithContext(ctx).
		Where(Shop{Domain: domain}).
		Attrs(Shop{Plan: plans.Free}).
		FirstOrCreate(&shop).Error; err != nil {
		return nil, fmt.Errorf("ensure shop %s: %w", domain, err)
	}
	return &shop, nil
}

// MarkInstalled stores a freshly exchanged (already encrypted) access token.
func MarkInstalled(ctx context.Context, db *gorm.DB, shopID uint, encryptedToken, scope string, now time.Time) error {
	return db.WithContext(ctx).Model(&Shop{}).
		Where("id = ?", shopID).
		Updates(map[string]interface{}{
			"access_token":   encryptedToken,
			"scope":          scope,
			"installed_at":   now,
			"uninstalled_at": nil,
		}).Error
}

// MarkUninstalled drops the access token; the row and its data stay until
// shop/redact arrives.
func MarkUninstalled(ctx context.Context, db *gorm.DB, domain string, now time.Time) error {
	return db.WithContext(ctx).Model(&Shop{}).
		Where("domain = ?", domain).
		Updates(map[string]interface{}{
			"access_token":   nil,
			"uninstalled_at": now,
		}).Error
}
