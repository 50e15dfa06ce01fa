package shopifywebhook

import (
	"encoding/json"
	"errors"

	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/infra/shopify"
	"shopnotes-app/internal/logger"

	"github.com/gin-gonic/gin"
)

type appSubscriptionPayload struct {
	AppSubscription struct {
		AdminGraphqlAPIID string `json:"admin_graphql_api_id"`
		Name              string `json:"name"`
		Status            string `json:"status"`
	} `json:"app_subscription"`
}

// handleSubscriptionUpdate mirrors Shopify-side status changes. It is the
// path that repairs a cancel whose local write was lost, and an approval
// whose confirm redirect never reached us.
func (h *Handler) handleSubscriptionUpdate(c *gin.Context, domain string, payload []byte) error {
	ctx := c.Request.Context()
	log := logger.WithComponent("webhooks").With("shop", domain)

	var p appSubscriptionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return &badPayloadError{msg: "Failed to parse app_subscription"}
	}
	resource, chargeID, err := billing.ParseGID(p.AppSubscription.AdminGraphqlAPIID)
	if err != nil || (resource != billing.ResourceAppSubscription && resource != billing.ResourceRecurringCharge) {
		return &badPayloadError{msg: "Invalid app_subscription id"}
	}

	shop, err := shops.FindByDomain(ctx, h.DB, domain)
	if errors.Is(err, shops.ErrShopNotFound) {
		log.Warn("subscription update for unknown shop")
		return nil
	}
	if err != nil {
		return err
	}

	sub, err := billing.FindByShopID(ctx, h.DB, shop.ID)
	if err != nil {
		return err
	}
	if sub != nil && sub.ShopifySubGID != billing.ChargeGID(chargeID) {
		known, _ := billing.ChargeIDFromGID(sub.ShopifySubGID)
		if sub.Status == billing.StatusActive || known > chargeID {
			log.Info("ignoring update for superseded charge", "charge_id", chargeID)
			return nil
		}
	}

	now := h.now()
	switch shopify.NormalizeChargeStatus(p.AppSubscription.Status) {
	case "active":
		if sub != nil && sub.Status == billing.StatusActive {
			return nil
		}
		if _, err := billing.Activate(ctx, h.DB, shop.ID, billing.ActivateParams{
			ChargeID: chargeID,
			Name:     p.AppSubscription.Name,
		}, now); err != nil {
			return err
		}
		log.Info("subscription activated from webhook", "charge_id", chargeID)

	case "canceled":
		changed, err := billing.MarkCanceledRemotely(ctx, h.DB, shop.ID, now)
		if err != nil {
			return err
		}
		if changed {
			log.Info("subscription canceled on Shopify", "charge_id", chargeID)
		}
	}

	_, err = billing.EnsurePlanAlignedWithSubscription(ctx, h.DB, domain, now)
	return err
}
