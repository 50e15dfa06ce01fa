package access

func CapabilitiesFor(state AccessState) []string {
	if !state.Paid() {
		return []string{"notes", "contacts"}
	}
	return []string{"notes", "contacts", "custom_mentions", "extended_history", "unlimited"}
}
