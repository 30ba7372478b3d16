package model

import "time"

type Organisation struct {
	ID          string    `json:"org_id"`
	Name        string    `json:"name" validate:"required"`
	Subtitle    string    `json:"subtitle"`
	Description string    `json:"description"`
	Leader      string    `json:"leader" validate:"required"`
	CreatedAt   time.Time `json:"created_at"`
}

type Project struct {
	ID             string    `json:"project_id"`
	OrganisationID string    `json:"org_id" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Description    string    `json:"description"`
	MinGroupSize   int       `json:"min_group_size" validate:"gt=0"`
	MaxGroupSize   int       `json:"max_group_size" validate:"gtefield=MinGroupSize"`
	CreatedAt      time.Time `json:"created_at"`
}
