package plans

import "strings"

type Plan string

// Plan constants (single source of truth)
const (
	Free Plan = "FREE"
	Pro  Plan = "PRO"
)

// Normalize maps stored or user-supplied plan strings to a known plan.
// Unknown values fall back to Free so gating fails closed.
func Normalize(s string) Plan {
	switch Plan(strings.ToUpper(strings.TrimSpace(s))) {
	case Pro:
		return Pro
	default:
		return Free
	}
}

func (p Plan) IsPaid() bool {
	return p == Pro
}
