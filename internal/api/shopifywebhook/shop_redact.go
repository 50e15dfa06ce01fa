package shopifywebhook

import (
	"fmt"

	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/contacts"
	"shopnotes-app/internal/domain/mentions"
	"shopnotes-app/internal/domain/notes"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// handleShopRedact erases every row of the shop, children first.
func (h *Handler) handleShopRedact(c *gin.Context, domain string) error {
	ctx := c.Request.Context()
	var shop shops.Shop
	if err := h.DB.WithContext(ctx).Where("domain = ?", domain).Limit(1).Find(&shop).Error; err != nil {
		return err
	}
	if shop.ID == 0 {
		return nil
	}

	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&notes.NoteVersion{},
			&notes.Note{},
			&notes.Folder{},
			&contacts.Contact{},
			&contacts.ContactFolder{},
			&mentions.CustomMention{},
			&billing.Subscription{},
		} {
			if err := tx.Where("shop_id = ?", shop.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&shops.Shop{}, shop.ID).Error
	})
	if err != nil {
		return fmt.Errorf("redact shop %s: %w", domain, err)
	}

	logger.WithComponent("webhooks").Info("shop data erased", "shop", domain)
	return nil
}
