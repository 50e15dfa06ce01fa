package shop

import (
	"time"

	"shopnotes-app/internal/domain/access"
	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/domain/usage"
)

func BuildShopDTO(s shops.Shop) ShopDTO {
	return ShopDTO{
		ID:          s.ID,
		Domain:      s.Domain,
		Plan:        string(s.Plan),
		Scope:       s.Scope,
		InstalledAt: s.InstalledAt,
	}
}

func BuildSubscriptionDTO(sub *billing.Subscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	var chargeID *int64
	if id, err := billing.ChargeIDFromGID(sub.ShopifySubGID); err == nil {
		chargeID = &id
	}
	return &SubscriptionDTO{
		Status:      string(sub.Status),
		Name:        sub.Name,
		Price:       sub.Price,
		ChargeID:    chargeID,
		CreatedAt:   sub.CreatedAt,
		AccessUntil: sub.AccessUntil,
		GraceEndsAt: sub.GraceEndsAt,
		RenewsAt:    sub.RenewsAt,
	}
}

func BuildTrialDTO(now time.Time, sub *billing.Subscription) *TrialDTO {
	if sub == nil || sub.TrialEndsAt == nil {
		return nil
	}

	daysLeft := 0
	if now.Before(*sub.TrialEndsAt) {
		daysLeft = int(sub.TrialEndsAt.Sub(now).Hours() / 24)
	}
	return &TrialDTO{
		EndsAt:   sub.TrialEndsAt,
		DaysLeft: daysLeft,
	}
}

func BuildAccessDTO(policy access.Policy, report usage.Report) AccessDTO {
	return AccessDTO{
		State:           string(policy.State),
		Plan:            string(policy.Plan),
		Capabilities:    policy.Capabilities,
		Usage:           report,
		VersionsPerNote: policy.Limits.VersionsPerNote,
	}
}
