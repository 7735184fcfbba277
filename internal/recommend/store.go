package recommend

import (
	"context"

	"github.com/rcliao/taskmarket/internal/domain"
)

// Store is the read-only view of the marketplace the ranker needs.
//
// Every task ID returned by UserCompletedTaskIDs and UserLikedTaskIDs must
// resolve through ResolveTask; a miss is reported as domain.ErrNotFound and
// treated by the ranker as an integrity fault.
type Store interface {
	ActiveTasks(ctx context.Context) ([]*domain.Task, error)
	UserInterests(ctx context.Context, userID string) ([]string, error)
	UserCompletedTaskIDs(ctx context.Context, userID string) ([]string, error)
	UserLikedTaskIDs(ctx context.Context, userID string) ([]string, error)
	TaskProperties(ctx context.Context, taskID string) ([]string, error)
	ResolveTask(ctx context.Context, taskID string) (*domain.Task, error)
}

// Set is a set of identifiers.
type Set map[string]struct{}

func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}
