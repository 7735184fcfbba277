package domain

import (
	"github.com/google/uuid"
)

// Property is a tag shared between tasks and user interests, such as
// "cleaning" or "coding".
type Property struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required,max=100"`
	CreatorID string `json:"creator"`
}

func NewProperty(creatorID, name string) *Property {
	return &Property{
		ID:        uuid.New().String(),
		Name:      name,
		CreatorID: creatorID,
	}
}

type TaskProperty struct {
	TaskID     string `json:"task"`
	PropertyID string `json:"property"`
}
