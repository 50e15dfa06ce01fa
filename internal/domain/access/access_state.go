package access

import (
	"time"

	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/plans"
	"shopnotes-app/internal/domain/shops"
)

// Effective access for UI/product: pro|trial|grace|free
func ComputeAccessState(now time.Time, shop shops.Shop, sub *billing.Subscription) AccessState {
	if shop.Plan != plans.Pro || sub == nil {
		return AccessFree
	}

	switch sub.Status {
	case billing.StatusActive:
		if sub.TrialEndsAt != nil && now.Before(*sub.TrialEndsAt) {
			return AccessTrial
		}
		return AccessPro

	case billing.StatusCanceled:
		// paid-through window after cancellation
		if sub.Entitles(now) {
			return AccessGrace
		}
		return AccessFree

	default:
		return AccessFree
	}
}

func EffectivePlan(state AccessState) plans.Plan {
	if state.Paid() {
		return plans.Pro
	}
	return plans.Free
}
