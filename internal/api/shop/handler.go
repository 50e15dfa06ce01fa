package shop

import (
	"net/http"
	"time"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/app/http/middleware"
	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/usage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// GetMe bootstraps the embedded app: shop, billing state and effective access.
func (h *Handler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	shop := middleware.CurrentShop(c)
	if shop == nil {
		apperr.Respond(c, apperr.Unauthorized("Missing session"))
		return
	}
	policy := middleware.CurrentPolicy(c)

	sub, err := billing.FindByShopID(ctx, h.DB, shop.ID)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load subscription", err))
		return
	}
	report, err := usage.Compute(ctx, h.DB, shop.ID, policy.Plan)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to compute usage", err))
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		Shop: BuildShopDTO(*shop),
		Billing: BillingDTO{
			Subscription: BuildSubscriptionDTO(sub),
			Trial:        BuildTrialDTO(h.now(), sub),
		},
		Access: BuildAccessDTO(policy, report),
	})
}

// GetPlanUsage reports used/limit per resource under the effective plan.
func (h *Handler) GetPlanUsage(c *gin.Context) {
	shop := middleware.CurrentShop(c)
	if shop == nil {
		apperr.Respond(c, apperr.Unauthorized("Missing session"))
		return
	}
	policy := middleware.CurrentPolicy(c)

	report, err := usage.Compute(c.Request.Context(), h.DB, shop.ID, policy.Plan)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to compute usage", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"plan":    policy.Plan,
		"usage":   report,
	})
}
