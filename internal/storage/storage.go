package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/rcliao/taskmarket/internal/config"
	"github.com/rcliao/taskmarket/internal/domain"
)

// Backend is everything a storage implementation provides: the service
// repositories plus the read view the ranker needs.
type Backend interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	SaveTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error

	CreateProperty(ctx context.Context, property *domain.Property) error
	GetProperty(ctx context.Context, id string) (*domain.Property, error)
	ListProperties(ctx context.Context) ([]*domain.Property, error)
	LinkTaskProperty(ctx context.Context, taskID, propertyID string) error
	UnlinkTaskProperty(ctx context.Context, taskID, propertyID string) error
	TaskProperties(ctx context.Context, taskID string) ([]string, error)

	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	SaveProfile(ctx context.Context, profile domain.Profile) error
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	SetUserInterest(ctx context.Context, interest domain.UserInterest) error
	ListUserInterests(ctx context.Context, userID string) ([]domain.UserInterest, error)
	SetUserBehavior(ctx context.Context, behavior domain.UserBehavior) error
	ListUserBehaviors(ctx context.Context, userID string) ([]domain.UserBehavior, error)

	ActiveTasks(ctx context.Context) ([]*domain.Task, error)
	UserInterests(ctx context.Context, userID string) ([]string, error)
	UserCompletedTaskIDs(ctx context.Context, userID string) ([]string, error)
	UserLikedTaskIDs(ctx context.Context, userID string) ([]string, error)
	ResolveTask(ctx context.Context, taskID string) (*domain.Task, error)

	Close() error
}

var (
	_ Backend = (*MemoryStorage)(nil)
	_ Backend = (*FileStorage)(nil)
	_ Backend = (*SQLStorage)(nil)
)

// Open returns the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStorage(), nil
	case config.DriverFile, "":
		backend, err = NewFileStorage(cfg.Path)
	case config.DriverSQLite:
		backend, err = OpenSQLite(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		backend, err = OpenPostgres(ctx, cfg.PostgresURL, cfg.MaxConns)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return backend, nil
}

func alreadyExists(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrAlreadyExists)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortTasks orders tasks by creation time, then ID.
func sortTasks(tasks []*domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedOn.Equal(tasks[j].CreatedOn) {
			return tasks[i].CreatedOn.Before(tasks[j].CreatedOn)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
