package schedule

import "time"

// Assignments occupy half-open intervals [start, end); a nil end is
// open-ended. Half-open semantics let one assignment end exactly when the
// next begins without conflict.
func overlapsHalfOpen(s1 time.Time, e1 *time.Time, s2 time.Time, e2 *time.Time) bool {
	if e1 != nil && !s2.Before(*e1) {
		return false
	}
	if e2 != nil && !s1.Before(*e2) {
		return false
	}
	return true
}

// CheckConflict decides whether candidate may coexist with the employee's
// other assignments. Only ACTIVE, non-trashed assignments of the same
// employee participate; a non-ACTIVE candidate never conflicts. Returns
// ErrOverlapConflict on the first overlap found, nil otherwise.
func CheckConflict(candidate Assignment, existing []Assignment) error {
	if candidate.Status != StatusActive {
		return nil
	}
	for _, other := range existing {
		if other.ID != "" && other.ID == candidate.ID {
			continue
		}
		if other.UserID != candidate.UserID {
			continue
		}
		if other.Status != StatusActive || other.TrashedAt != nil {
			continue
		}
		if overlapsHalfOpen(candidate.StartAt, candidate.EndAt, other.StartAt, other.EndAt) {
			return ErrOverlapConflict
		}
	}
	return nil
}

// CountActive reports how many ACTIVE, non-trashed assignments the employee
// already holds. Advisory only; it never blocks a write.
func CountActive(userID string, assignments []Assignment) int {
	count := 0
	for _, a := range assignments {
		if a.UserID == userID && a.Status == StatusActive && a.TrashedAt == nil {
			count++
		}
	}
	return count
}
