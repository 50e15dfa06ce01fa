package access

import (
	"time"

	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/plans"
	"shopnotes-app/internal/domain/shops"
)

type Policy struct {
	State        AccessState
	Plan         plans.Plan
	Limits       plans.Limits
	Capabilities []string
}

func ComputePolicy(now time.Time, shop shops.Shop, sub *billing.Subscription) Policy {
	state := ComputeAccessState(now, shop, sub)
	plan := EffectivePlan(state)

	return Policy{
		State:        state,
		Plan:         plan,
		Limits:       plans.LimitsFor(plan),
		Capabilities: CapabilitiesFor(state),
	}
}
