package order

// Domain returns the records which share the given group key.
// Records without a group never match.
func Domain(records []Record, group string) (out []Record) {
	for _, r := range records {
		if r.HasGroup && r.Group == group {
			out = append(out, r)
		}
	}
	return out
}

// Siblings filters a visual ordering down to the IDs accepted by inDomain, keeping their order.
// If inDomain is nil, all IDs are siblings.
func Siblings(visual []string, inDomain func(id string) bool) []string {
	if inDomain == nil {
		return visual
	}

	out := make([]string, 0, len(visual))
	for _, id := range visual {
		if inDomain(id) {
			out = append(out, id)
		}
	}
	return out
}
