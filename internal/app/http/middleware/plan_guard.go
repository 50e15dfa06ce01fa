package middleware

import (
	"errors"
	"net/http"
	"time"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/domain/access"
	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/plans"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/domain/usage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	ctxShopRecord = "shop_record"
	ctxPolicy     = "policy"
)

// RequirePlanAligned makes sure the session's shop exists, runs the plan
// guard and stores the resulting shop row and access policy on the context.
func RequirePlanAligned(db *gorm.DB, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		domain := c.GetString("shop")
		if domain == "" {
			apperr.Respond(c, apperr.Unauthorized("Missing session"))
			return
		}

		shop, err := shops.EnsureShop(ctx, db, domain)
		if err != nil {
			apperr.Respond(c, apperr.Internal("Failed to load shop", err))
			return
		}

		changed, err := billing.EnsurePlanAlignedWithSubscription(ctx, db, domain, now())
		if err != nil {
			apperr.Respond(c, apperr.Internal("Failed to align plan", err))
			return
		}
		if changed {
			shop.Plan = plans.Free
		}

		sub, err := billing.FindByShopID(ctx, db, shop.ID)
		if err != nil {
			apperr.Respond(c, apperr.Internal("Failed to load subscription", err))
			return
		}

		c.Set(ctxShopRecord, shop)
		c.Set(ctxPolicy, access.ComputePolicy(now(), *shop, sub))
		c.Next()
	}
}

// CurrentShop returns the row stored by RequirePlanAligned.
func CurrentShop(c *gin.Context) *shops.Shop {
	if v, ok := c.Get(ctxShopRecord); ok {
		if shop, ok := v.(*shops.Shop); ok {
			return shop
		}
	}
	return nil
}

// CurrentPolicy falls back to the FREE policy when none was computed.
func CurrentPolicy(c *gin.Context) access.Policy {
	if v, ok := c.Get(ctxPolicy); ok {
		if p, ok := v.(access.Policy); ok {
			return p
		}
	}
	return access.ComputePolicy(time.Now(), shops.Shop{Plan: plans.Free}, nil)
}

// RequireQuota rejects creates that would exceed the shop's plan with a 403
// carrying the usage report, so the client can show the upgrade prompt.
func RequireQuota(db *gorm.DB, resource plans.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := CurrentShop(c)
		if shop == nil {
			apperr.Respond(c, apperr.Unauthorized("Missing session"))
			return
		}
		policy := CurrentPolicy(c)

		err := usage.Check(c.Request.Context(), db, shop.ID, policy.Plan, resource)
		var limitErr *usage.LimitError
		switch {
		case err == nil:
			c.Next()
		case errors.As(err, &limitErr):
			RespondLimitReached(c, limitErr)
		default:
			apperr.Respond(c, apperr.Internal("Failed to check plan usage", err))
		}
	}
}

func RespondLimitReached(c *gin.Context, e *usage.LimitError) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"error":   "Plan limit reached",
		"code":    usage.CodeLimitReached,
		"message": e.Message(),
		"plan":    e.Plan,
		"usage":   e.Usage,
	})
}
