package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/taskmarket/internal/domain"
)

// fakeStore is a map-backed Store whose references need not be consistent.
type fakeStore struct {
	tasks     map[string]*domain.Task
	active    []string
	props     map[string][]string
	interests []string
	completed []string
	liked     []string
	failWith  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks: make(map[string]*domain.Task),
		props: make(map[string][]string),
	}
}

func (f *fakeStore) add(id, description string, active bool, props ...string) *domain.Task {
	task := &domain.Task{
		ID:          id,
		Name:        id,
		Description: description,
		Status:      domain.StatusNotStarted,
		IsActive:    active,
		CreatedOn:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.tasks[id] = task
	if active {
		f.active = append(f.active, id)
	}
	f.props[id] = props
	return task
}

func (f *fakeStore) ActiveTasks(context.Context) ([]*domain.Task, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]*domain.Task, 0, len(f.active))
	for _, id := range f.active {
		out = append(out, f.tasks[id])
	}
	return out, nil
}

func (f *fakeStore) UserInterests(context.Context, string) ([]string, error) {
	return f.interests, nil
}

func (f *fakeStore) UserCompletedTaskIDs(context.Context, string) ([]string, error) {
	return f.completed, nil
}

func (f *fakeStore) UserLikedTaskIDs(context.Context, string) ([]string, error) {
	return f.liked, nil
}

func (f *fakeStore) TaskProperties(_ context.Context, taskID string) ([]string, error) {
	return f.props[taskID], nil
}

func (f *fakeStore) ResolveTask(_ context.Context, taskID string) (*domain.Task, error) {
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, domain.NotFound("task", taskID)
	}
	return task, nil
}

var errBackend = errors.New("backend unavailable")
