package access

type AccessState string

const (
	AccessPro   AccessState = "pro"
	AccessTrial AccessState = "trial"
	AccessGrace AccessState = "grace"
	AccessFree  AccessState = "free"
)

// Paid reports whether the state unlocks PRO limits.
func (s AccessState) Paid() bool {
	return s == AccessPro || s == AccessTrial || s == AccessGrace
}
