package shopify

import "strings"

// NormalizeChargeStatus folds REST charge statuses ("active", "cancelled")
// and GraphQL AppSubscription statuses ("ACTIVE", "CANCELLED") into
// pending|accepted|active|canceled.
func NormalizeChargeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "none"
	case "pending":
		return "pending"
	case "accepted":
		return "accepted"
	case "active":
		return "active"
	case "cancelled", "canceled", "expired", "declined", "frozen":
		return "canceled"
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}

func IsTerminated(status string) bool {
	return NormalizeChargeStatus(status) == "canceled"
}
