package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskmarket/internal/domain"
	"github.com/rcliao/taskmarket/internal/recommend"
	"github.com/rcliao/taskmarket/internal/storage"
)

type fixture struct {
	store      *storage.MemoryStorage
	tasks      *TaskService
	properties *PropertyService
	users      *UserService
	recommend  *RecommendService
	employer   *domain.User
	employee   *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	f := &fixture{
		store:      store,
		tasks:      NewTaskService(store),
		properties: NewPropertyService(store),
		users:      NewUserService(store),
		recommend:  NewRecommendService(recommend.NewRanker(store), store, 0, 0),
	}

	var err error
	f.employer, err = f.users.Create(ctx, "boss", "boss@example.com")
	require.NoError(t, err)
	_, err = f.users.SetProfile(ctx, f.employer.ID, true)
	require.NoError(t, err)

	f.employee, err = f.users.Create(ctx, "worker", "worker@example.com")
	require.NoError(t, err)
	_, err = f.users.SetProfile(ctx, f.employee.ID, false)
	require.NoError(t, err)

	return f
}

func (f *fixture) task(t *testing.T, name, description string) *domain.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), f.employer.ID, name, description)
	require.NoError(t, err)
	return task
}

// complete walks a task through its whole lifecycle for the employee.
func (f *fixture) complete(t *testing.T, task *domain.Task) {
	t.Helper()
	ctx := context.Background()
	_, err := f.tasks.Assign(ctx, task.ID, f.employee.ID)
	require.NoError(t, err)
	_, err = f.tasks.Submit(ctx, task.ID, f.employee.ID)
	require.NoError(t, err)
	_, err = f.tasks.Approve(ctx, task.ID, f.employer.ID)
	require.NoError(t, err)
}
