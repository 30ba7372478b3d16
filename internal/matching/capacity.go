package matching

// RemainingSlots is the number of members a group of size current can still take
// in a project capped at maxGroupSize. Never negative.
func RemainingSlots(maxGroupSize, current int) int {
	if remaining := maxGroupSize - current; remaining > 0 {
		return remaining
	}
	return 0
}

// HasCapacityFor reports whether incoming more members still fit.
func HasCapacityFor(maxGroupSize, current, incoming int) bool {
	return incoming <= RemainingSlots(maxGroupSize, current)
}
