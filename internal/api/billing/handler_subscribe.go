package billing

import (
	"net/http"
	"net/url"
	"strconv"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/app/http/middleware"
	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/infra/shopify"
	"shopnotes-app/internal/logger"

	"github.com/gin-gonic/gin"
)

// Subscribe creates a pending PRO charge and hands back the URL where the
// merchant approves it.
func (h *Handler) Subscribe(c *gin.Context) {
	ctx := c.Request.Context()
	shop := middleware.CurrentShop(c)
	if shop == nil {
		apperr.Respond(c, apperr.Unauthorized("Missing session"))
		return
	}

	sub, err := billing.FindByShopID(ctx, h.DB, shop.ID)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load subscription", err))
		return
	}
	if sub != nil && sub.Status == billing.StatusActive {
		apperr.Respond(c, apperr.Validation("Shop already has an active subscription"))
		return
	}

	token, err := h.accessToken(shop)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	charge := shopify.NewCharge{
		Name:      h.Plan.Name,
		Price:     strconv.FormatFloat(h.Plan.Price, 'f', 2, 64),
		ReturnURL: h.AppURL + "/api/billing/confirm?shop=" + url.QueryEscape(shop.Domain),
		TrialDays: h.trialDays(sub),
	}
	if h.Plan.Test {
		test := true
		charge.Test = &test
	}

	created, err := h.Shopify.CreateRecurringCharge(ctx, shop.Domain, token, charge)
	if err != nil {
		apperr.Respond(c, apperr.Upstream("Failed to create charge with Shopify", err))
		return
	}

	logger.WithComponent("billing").Info("charge created",
		"shop", shop.Domain, "charge_id", created.ID)

	c.JSON(http.StatusOK, gin.H{"confirmationUrl": created.ConfirmationURL})
}

// Returning subscribers do not get a second trial.
func (h *Handler) trialDays(prev *billing.Subscription) int {
	if prev != nil {
		return 0
	}
	return h.Plan.TrialDays
}

// Confirm is Shopify's return URL after the merchant approved or declined
// the charge. The charge status is read back from Shopify, never trusted
// from the query string.
func (h *Handler) Confirm(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithComponent("billing")

	domain, err := shops.NormalizeDomain(c.Query("shop"))
	if err != nil {
		apperr.Respond(c, apperr.Validation("Invalid shop"))
		return
	}
	chargeID, err := strconv.ParseInt(c.Query("charge_id"), 10, 64)
	if err != nil || chargeID <= 0 {
		apperr.Respond(c, apperr.Validation("Invalid charge_id"))
		return
	}

	shop, err := h.loadShop(ctx, domain)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	// A reloaded return URL must not move the billing anchor.
	current, err := billing.FindByShopID(ctx, h.DB, shop.ID)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load subscription", err))
		return
	}
	if current != nil && current.Status == billing.StatusActive && current.ShopifySubGID == billing.ChargeGID(chargeID) {
		log.Info("charge already active", "shop", domain, "charge_id", chargeID)
		c.Redirect(http.StatusFound, h.embeddedAppURL(domain)+"?billing=success")
		return
	}

	token, err := h.accessToken(shop)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	charge, err := h.Shopify.GetRecurringCharge(ctx, domain, token, chargeID)
	if err != nil {
		apperr.Respond(c, apperr.Upstream("Failed to load charge from Shopify", err))
		return
	}

	if shopify.NormalizeChargeStatus(charge.Status) == "accepted" {
		charge, err = h.Shopify.ActivateRecurringCharge(ctx, domain, token, chargeID)
		if err != nil {
			apperr.Respond(c, apperr.Upstream("Failed to activate charge with Shopify", err))
			return
		}
	}

	if shopify.NormalizeChargeStatus(charge.Status) != "active" {
		log.Info("charge not approved", "shop", domain, "charge_id", chargeID, "status", charge.Status)
		c.Redirect(http.StatusFound, h.embeddedAppURL(domain)+"?billing=declined")
		return
	}

	price, _ := strconv.ParseFloat(charge.Price, 64)
	if _, err := billing.Activate(ctx, h.DB, shop.ID, billing.ActivateParams{
		ChargeID:    charge.ID,
		Name:        charge.Name,
		Price:       price,
		TrialEndsAt: shopify.ParseDate(charge.TrialEndsOn),
		RenewsAt:    shopify.ParseDate(charge.BillingOn),
	}, h.now()); err != nil {
		apperr.Respond(c, apperr.Internal("Failed to activate subscription", err))
		return
	}

	log.Info("subscription activated", "shop", domain, "charge_id", charge.ID)
	c.Redirect(http.StatusFound, h.embeddedAppURL(domain)+"?billing=success")
}

func (h *Handler) embeddedAppURL(domain string) string {
	return shopify.ShopOrigin(domain) + "/admin/apps/" + h.APIKey
}
