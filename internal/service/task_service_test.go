package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskmarket/internal/domain"
)

func TestTaskService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.employer.ID, "Clean kitchen", "Clean the kitchen floor")
	require.NoError(t, err)
	assert.Equal(t, f.employer.ID, task.OwnerID)

	got, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Name, got.Name)

	_, err = f.tasks.Create(ctx, f.employee.ID, "Nope", "Employees cannot post")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "owner")
}

func TestTaskService_CreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.tasks.Create(context.Background(), f.employer.ID, strings.Repeat("n", 81), "")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Ensure this field has no more than 80 characters.", verr.Fields["name"])
	assert.Equal(t, "This field is required.", verr.Fields["description"])
}

func TestTaskService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, "Paint", "Paint the fence")

	_, err := f.tasks.Assign(ctx, task.ID, f.employer.ID)
	assert.True(t, domain.IsValidation(err))

	assigned, err := f.tasks.Assign(ctx, task.ID, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, assigned.Status)

	_, err = f.tasks.Approve(ctx, task.ID, f.employer.ID)
	assert.True(t, domain.IsValidation(err))

	submitted, err := f.tasks.Submit(ctx, task.ID, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInReview, submitted.Status)

	_, err = f.tasks.Approve(ctx, task.ID, f.employee.ID)
	assert.True(t, domain.IsValidation(err))

	approved, err := f.tasks.Approve(ctx, task.ID, f.employer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, approved.Status)
	assert.False(t, approved.IsActive)

	stored, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, stored.Status)

	_, err = f.tasks.Unassign(ctx, task.ID, f.employee.ID)
	assert.True(t, domain.IsValidation(err))
}

func TestTaskService_UpdateAndDeactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, "Paint", "Paint the fence")

	name := "Paint twice"
	_, err := f.tasks.UpdateDetails(ctx, task.ID, f.employee.ID, &name, nil, nil)
	assert.True(t, domain.IsValidation(err))

	updated, err := f.tasks.UpdateDetails(ctx, task.ID, f.employer.ID, &name, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	empty := ""
	_, err = f.tasks.UpdateDetails(ctx, task.ID, f.employer.ID, nil, &empty, nil)
	assert.True(t, domain.IsValidation(err))
	stored, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paint the fence", stored.Description)

	_, err = f.tasks.Deactivate(ctx, task.ID, f.employer.ID)
	require.NoError(t, err)

	active := true
	tasks, err := f.tasks.List(ctx, domain.TaskFilter{Active: &active})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, "Temp", "Temporary")

	assert.True(t, domain.IsValidation(f.tasks.Delete(ctx, task.ID, f.employee.ID)))
	require.NoError(t, f.tasks.Delete(ctx, task.ID, f.employer.ID))

	_, err := f.tasks.Get(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
