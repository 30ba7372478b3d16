package model

import "time"

type Profile struct {
	UserID    string   `json:"user_id"`
	Username  string   `json:"username" validate:"required"`
	Bio       string   `json:"bio"`
	Skills    []string `json:"skills"`
	Languages []string `json:"languages"`
}

// Group is a set of users jointly applying to one project. Members keep join order.
type Group struct {
	ID        string     `json:"group_id"`
	ProjectID string     `json:"project_id"`
	Members   []*Profile `json:"members"`
	CreatedAt time.Time  `json:"created_at"`
}

func (g *Group) Size() int {
	return len(g.Members)
}

// CandidateGroup is a group offered to a viewer in the discovery feed.
type CandidateGroup struct {
	*Group
	RemainingSlots int `json:"remaining_slots"`
}

type JoinRequest struct {
	RequesterGroupID string    `json:"requester_group_id"`
	TargetGroupID    string    `json:"target_group_id"`
	ProjectID        string    `json:"project_id"`
	RequesterUserID  string    `json:"requester_user_id"`
	CreatedAt        time.Time `json:"created_at"`
}
