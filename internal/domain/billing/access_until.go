package billing

import "time"

// BillingPeriodDays approximates a Shopify billing cycle.
const BillingPeriodDays = 30

// ComputeAccessUntil returns the end of the billing period that contains now,
// counting 30-day periods from sub.CreatedAt. A trial that outlasts that
// period and has not yet ended wins.
func ComputeAccessUntil(now time.Time, sub Subscription) time.Time {
	days := int(now.Sub(sub.CreatedAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	completedPeriods := days / BillingPeriodDays

	accessUntil := sub.CreatedAt.AddDate(0, 0, (completedPeriods+1)*BillingPeriodDays)

	if sub.TrialEndsAt != nil && sub.TrialEndsAt.After(accessUntil) && sub.TrialEndsAt.After(now) {
		accessUntil = *sub.TrialEndsAt
	}
	return accessUntil
}
