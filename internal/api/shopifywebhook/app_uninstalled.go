package shopifywebhook

import (
	"fmt"

	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/shops"

	"github.com/gin-gonic/gin"
)

// Uninstall ends access immediately: no grace window, token dropped.
func (h *Handler) handleAppUninstalled(c *gin.Context, domain string) error {
	ctx := c.Request.Context()
	if err := billing.DowngradeShopToFreeByDomain(ctx, h.DB, domain); err != nil {
		return err
	}
	if err := shops.MarkUninstalled(ctx, h.DB, domain, h.now()); err != nil {
		return fmt.Errorf("mark %s uninstalled: %w", domain, err)
	}
	return nil
}
