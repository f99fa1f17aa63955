package domain

import "slices"

// StatusRank orders statuses for display: escalated questions come first,
// then open (pending) ones, then everything already answered. Unknown
// statuses sink to the bottom.
func StatusRank(s Status) int {
	switch s {
	case StatusEscalated:
		return 0
	case StatusPending:
		return 1
	case StatusAnswered:
		return 2
	}
	return 3
}

// IsValidTransition reports whether a status change is allowed. Every
// transition between known statuses is permitted: there is no terminal state,
// so an admin can always pull an answered question back into triage.
func IsValidTransition(from, to Status) bool {
	_, okFrom := ParseStatus(string(from))
	_, okTo := ParseStatus(string(to))
	return okFrom && okTo
}

// SortQuestions orders questions for listing: rank ascending, and within a
// status bucket newest first. The sort is stable and fully determined by
// (rank, created_at), independent of input order.
func SortQuestions(questions []Question) {
	slices.SortStableFunc(questions, func(a, b Question) int {
		if ra, rb := StatusRank(a.Status), StatusRank(b.Status); ra != rb {
			return ra - rb
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return 1
		}
		return 0
	})
}
