package service

import (
	"context"

	"github.com/rcliao/taskmarket/internal/domain"
)

type TaskStorage interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	SaveTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

type PropertyStorage interface {
	CreateProperty(ctx context.Context, property *domain.Property) error
	GetProperty(ctx context.Context, id string) (*domain.Property, error)
	ListProperties(ctx context.Context) ([]*domain.Property, error)
	LinkTaskProperty(ctx context.Context, taskID, propertyID string) error
	UnlinkTaskProperty(ctx context.Context, taskID, propertyID string) error
	TaskProperties(ctx context.Context, taskID string) ([]string, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
}

type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	SaveProfile(ctx context.Context, profile domain.Profile) error
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	SetUserInterest(ctx context.Context, interest domain.UserInterest) error
	ListUserInterests(ctx context.Context, userID string) ([]domain.UserInterest, error)
	SetUserBehavior(ctx context.Context, behavior domain.UserBehavior) error
	ListUserBehaviors(ctx context.Context, userID string) ([]domain.UserBehavior, error)
	ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
}

// ProfileLookup resolves a user's role.
type ProfileLookup interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

// UserLookup is what RecommendService needs to reject unknown users.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}
