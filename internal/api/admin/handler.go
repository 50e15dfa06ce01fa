package admin

import (
	"errors"
	"net/http"
	"time"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/domain/access"
	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/domain/usage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminShop struct {
	ID            uint       `json:"id"`
	Domain        string     `json:"domain"`
	Plan          string     `json:"plan"`
	AccessState   string     `json:"access_state"`
	SubStatus     *string    `json:"subscription_status,omitempty"`
	AccessUntil   *time.Time `json:"access_until,omitempty"`
	InstalledAt   *time.Time `json:"installed_at,omitempty"`
	UninstalledAt *time.Time `json:"uninstalled_at,omitempty"`
	CreatedAt     string     `json:"created_at"`
}

type AdminStats struct {
	TotalShops       int            `json:"total_shops"`
	InstalledShops   int            `json:"installed_shops"`
	ShopsPerPlan     map[string]int `json:"shops_per_plan"`
	ActiveSubs       int            `json:"active_subscriptions"`
	CanceledInGrace  int            `json:"canceled_in_grace"`
	MonthlyRecurring float64        `json:"monthly_recurring"`
}

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

func (h *Handler) toAdminShop(s shops.Shop, sub *billing.Subscription) AdminShop {
	out := AdminShop{
		ID:            s.ID,
		Domain:        s.Domain,
		Plan:          string(s.Plan),
		AccessState:   string(access.ComputeAccessState(h.now(), s, sub)),
		InstalledAt:   s.InstalledAt,
		UninstalledAt: s.UninstalledAt,
		CreatedAt:     s.CreatedAt.Format("2006-01-02 15:04"),
	}
	if sub != nil {
		status := string(sub.Status)
		out.SubStatus = &status
		out.AccessUntil = sub.AccessUntil
	}
	return out
}

func (h *Handler) ListShops(c *gin.Context) {
	db := h.DB.WithContext(c.Request.Context())

	var all []shops.Shop
	if err := db.Order("created_at DESC").Find(&all).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load shops", err))
		return
	}
	var subs []billing.Subscription
	if err := db.Find(&subs).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load subscriptions", err))
		return
	}
	byShop := make(map[uint]*billing.Subscription, len(subs))
	for i := range subs {
		byShop[subs[i].ShopID] = &subs[i]
	}

	result := make([]AdminShop, 0, len(all))
	for _, s := range all {
		result = append(result, h.toAdminShop(s, byShop[s.ID]))
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetShopDetails(c *gin.Context) {
	ctx := c.Request.Context()
	shop, err := shops.FindByDomain(ctx, h.DB, c.Param("domain"))
	if errors.Is(err, shops.ErrShopNotFound) {
		apperr.Respond(c, apperr.NotFound("Shop not found"))
		return
	}
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load shop", err))
		return
	}

	sub, err := billing.FindByShopID(ctx, h.DB, shop.ID)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load subscription", err))
		return
	}
	policy := access.ComputePolicy(h.now(), *shop, sub)
	report, err := usage.Compute(ctx, h.DB, shop.ID, policy.Plan)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to compute usage", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shop":         h.toAdminShop(*shop, sub),
		"subscription": sub,
		"usage":        report,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	db := h.DB.WithContext(c.Request.Context())
	now := h.now()
	var stats AdminStats

	var totalShops, installed, active, grace int64
	var mrr float64

	if err := db.Model(&shops.Shop{}).Count(&totalShops).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load stats", err))
		return
	}
	db.Model(&shops.Shop{}).Where("access_token IS NOT NULL").Count(&installed)
	db.Model(&billing.Subscription{}).Where("status = ?", billing.StatusActive).Count(&active)
	db.Model(&billing.Subscription{}).
		Where("status = ? AND access_until > ?", billing.StatusCanceled, now).
		Count(&grace)
	db.Model(&billing.Subscription{}).
		Where("status = ?", billing.StatusActive).
		Select("COALESCE(SUM(price), 0)").Scan(&mrr)

	stats.TotalShops = int(totalShops)
	stats.InstalledShops = int(installed)
	stats.ActiveSubs = int(active)
	stats.CanceledInGrace = int(grace)
	stats.MonthlyRecurring = mrr

	type PlanCount struct {
		Plan  string
		Count int
	}
	var counts []PlanCount
	db.Model(&shops.Shop{}).
		Select("plan, COUNT(id) as count").
		Group("plan").
		Scan(&counts)

	stats.ShopsPerPlan = map[string]int{}
	for _, pc := range counts {
		stats.ShopsPerPlan[pc.Plan] = pc.Count
	}

	c.JSON(http.StatusOK, stats)
}

// AlignShop runs the plan guard for one shop on demand.
func (h *Handler) AlignShop(c *gin.Context) {
	domain, err := shops.NormalizeDomain(c.Param("domain"))
	if err != nil {
		apperr.Respond(c, apperr.Validation("Invalid shop"))
		return
	}
	changed, err := billing.EnsurePlanAlignedWithSubscription(c.Request.Context(), h.DB, domain, h.now())
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to align plan", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": domain, "changed": changed})
}
