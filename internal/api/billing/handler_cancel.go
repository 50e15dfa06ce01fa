package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/logger"

	"github.com/gin-gonic/gin"
)

// Cancel stops the shop's recurring charge on Shopify and keeps PRO access
// until the end of the paid period. The shop plan itself is left to the guard.
func (h *Handler) Cancel(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		apperr.Respond(c, apperr.MethodNotAllowed())
		return
	}
	ctx := c.Request.Context()
	log := logger.WithComponent("billing").With("shop", c.GetString("shop"))

	shop, err := h.loadShop(ctx, c.GetString("shop"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	sub, err := billing.FindByShopID(ctx, h.DB, shop.ID)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load subscription", err))
		return
	}
	if sub == nil || sub.Status != billing.StatusActive {
		apperr.Respond(c, apperr.Validation("No active subscription to cancel"))
		return
	}

	chargeID, err := billing.ChargeIDFromGID(sub.ShopifySubGID)
	if err != nil {
		apperr.Respond(c, apperr.Validation("Invalid subscription reference"))
		return
	}

	token, err := h.accessToken(shop)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if err := h.Shopify.CancelRecurringCharge(ctx, shop.Domain, token, chargeID); err != nil {
		apperr.Respond(c, apperr.Upstream("Failed to cancel subscription with Shopify", err))
		return
	}

	accessUntil := billing.ComputeAccessUntil(h.now(), *sub)
	err = billing.CancelLocally(ctx, h.DB, sub.ID, accessUntil)
	if errors.Is(err, billing.ErrNotActive) {
		// a webhook got there first; report what it stored
		accessUntil, err = h.storedAccessUntil(ctx, shop.ID)
	}
	if err != nil {
		// Shopify already dropped the charge. The app_subscriptions/update
		// webhook or `reconcile` brings the row in line.
		log.Error("charge canceled on Shopify but local update failed",
			"charge_id", chargeID,
			"subscription_id", sub.ID,
			"error", err,
		)
		apperr.Respond(c, apperr.Internal("Subscription canceled on Shopify but could not be saved", err))
		return
	}

	log.Info("subscription canceled", "charge_id", chargeID, "access_until", accessUntil)

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"accessUntil": accessUntil,
		"message":     fmt.Sprintf("Your subscription was canceled. PRO features stay available until %s.", accessUntil.Format("January 2, 2006")),
	})
}

var errNoAccessWindow = errors.New("subscription canceled without access window")

func (h *Handler) storedAccessUntil(ctx context.Context, shopID uint) (time.Time, error) {
	sub, err := billing.FindByShopID(ctx, h.DB, shopID)
	if err != nil {
		return time.Time{}, err
	}
	if sub == nil || sub.Status != billing.StatusCanceled || sub.AccessUntil == nil {
		return time.Time{}, errNoAccessWindow
	}
	return *sub.AccessUntil, nil
}
