package model

// FilterCriteria is supplied by the viewer. Zero values disable the clause.
// It is checked by matching.ValidateCriteria, not by validate tags.
type FilterCriteria struct {
	NumMembers int      `json:"num_members"`
	Languages  []string `json:"languages"`
	Skills     []string `json:"skills"`
}

type MatchStatus string

const (
	MatchStatusPending          MatchStatus = "PENDING"
	MatchStatusMatched          MatchStatus = "MATCHED"
	MatchStatusCapacityConflict MatchStatus = "CAPACITY_CONFLICT"
)

// MatchOutcome is the result of a right swipe. Group is only set when Status is MATCHED
// and holds the group the two parties were merged into.
type MatchOutcome struct {
	Status MatchStatus `json:"status"`
	Group  *Group      `json:"group,omitempty"`
}

func Pending() *MatchOutcome {
	return &MatchOutcome{Status: MatchStatusPending}
}

func Matched(g *Group) *MatchOutcome {
	return &MatchOutcome{Status: MatchStatusMatched, Group: g}
}

func CapacityConflict() *MatchOutcome {
	return &MatchOutcome{Status: MatchStatusCapacityConflict}
}
