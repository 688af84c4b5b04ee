package domain

// lifecycleOrder is the automatic delivery path. DRAFT, QUOTED and
// FAILED exist in the status taxonomy but no implemented transition
// reaches them; they are reserved for a future failure/draft flow.
var lifecycleOrder = []PaymentStatus{
	StatusConfirmed,
	StatusInReview,
	StatusSettling,
	StatusDelivered,
}

// NextStatus returns the successor of s on the delivery path. If s is
// terminal (DELIVERED) or not on the path at all, s is returned
// unchanged, so advancing past the end is always a safe no-op.
func NextStatus(s PaymentStatus) PaymentStatus {
	for i, st := range lifecycleOrder {
		if st == s {
			if i == len(lifecycleOrder)-1 {
				return s
			}
			return lifecycleOrder[i+1]
		}
	}
	return s
}

// IsTerminal reports whether no further automatic transition exists
// from s.
func IsTerminal(s PaymentStatus) bool {
	return NextStatus(s) == s
}
