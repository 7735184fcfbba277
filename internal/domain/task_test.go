package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	task := NewTask("owner-1", "Paint fence", "Paint the garden fence white")

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "owner-1", task.OwnerID)
	assert.Equal(t, "Paint fence", task.Name)
	assert.Equal(t, "Paint the garden fence white", task.Description)
	assert.Equal(t, StatusNotStarted, task.Status)
	assert.True(t, task.IsActive)
	assert.Nil(t, task.AssigneeID)
	assert.NotZero(t, task.CreatedOn)
	assert.NotZero(t, task.UpdatedOn)
}

func TestTaskStatus(t *testing.T) {
	statuses := []TaskStatus{StatusNotStarted, StatusInProgress, StatusInReview, StatusDone}

	for _, status := range statuses {
		assert.True(t, status.Valid())
	}
	assert.False(t, TaskStatus("Cancelled").Valid())
}

func TestTask_Lifecycle(t *testing.T) {
	task := NewTask("owner", "Fix bike", "Replace the chain")

	require.NoError(t, task.Assign("worker"))
	assert.Equal(t, StatusInProgress, task.Status)
	assert.True(t, task.IsAssignedTo("worker"))

	require.NoError(t, task.Submit("worker"))
	assert.Equal(t, StatusInReview, task.Status)
	assert.True(t, task.IsSubmitted)
	assert.NotNil(t, task.SubmittedOn)

	require.NoError(t, task.Approve("owner"))
	assert.Equal(t, StatusDone, task.Status)
	assert.True(t, task.IsApproved)
	assert.False(t, task.IsActive)
	assert.NotNil(t, task.ApprovedOn)

	// Inactive tasks are frozen
	err := task.Unassign("worker")
	assert.True(t, IsValidation(err))
}

func TestTask_Guards(t *testing.T) {
	task := NewTask("owner", "Walk dog", "Thirty minutes around the park")

	err := task.Submit("worker")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot submit before the task is started")

	err = task.Approve("owner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot approve before the task is submitted")

	require.NoError(t, task.Assign("worker"))

	err = task.Assign("someone-else")
	assert.True(t, IsValidation(err))

	err = task.Submit("someone-else")
	assert.True(t, IsValidation(err))

	err = task.Unassign("someone-else")
	assert.True(t, IsValidation(err))

	require.NoError(t, task.Submit("worker"))
	err = task.Approve("not-the-owner")
	assert.True(t, IsValidation(err))

	require.NoError(t, task.Unassign("worker"))
	assert.Equal(t, StatusNotStarted, task.Status)
	assert.False(t, task.IsSubmitted)
}

func TestTask_UpdateDetails(t *testing.T) {
	task := NewTask("owner", "Old", "Old description")
	name := "New"

	err := task.UpdateDetails("intruder", &name, nil, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.NotContains(t, verr.Fields, "description")

	require.NoError(t, task.UpdateDetails("owner", &name, nil, nil))
	assert.Equal(t, "New", task.Name)
	assert.Equal(t, "Old description", task.Description)
}

func TestTaskFilter_Matches(t *testing.T) {
	task := NewTask("owner", "A", "a")
	require.NoError(t, task.Assign("worker"))

	active := true
	inactive := false
	status := StatusInProgress
	owner := "owner"
	worker := "worker"
	other := "other"

	assert.True(t, TaskFilter{}.Matches(task))
	assert.True(t, TaskFilter{Active: &active, Status: &status, OwnerID: &owner, AssigneeID: &worker}.Matches(task))
	assert.False(t, TaskFilter{Active: &inactive}.Matches(task))
	assert.False(t, TaskFilter{AssigneeID: &other}.Matches(task))
}

func TestPageRequest_Bounds(t *testing.T) {
	start, end, size := PageRequest{}.Bounds(40, 15, 100)
	assert.Equal(t, 0, start)
	assert.Equal(t, 15, end)
	assert.Equal(t, 15, size)

	start, end, _ = PageRequest{Page: 3, PageSize: 15}.Bounds(40, 15, 100)
	assert.Equal(t, 30, start)
	assert.Equal(t, 40, end)

	start, end, _ = PageRequest{Page: 9}.Bounds(40, 15, 100)
	assert.Equal(t, 40, start)
	assert.Equal(t, 40, end)

	_, _, size = PageRequest{PageSize: 1000}.Bounds(40, 15, 100)
	assert.Equal(t, 100, size)

	start, end, _ = PageRequest{Page: math.MaxInt/100 + 2, PageSize: 100}.Bounds(3, 15, 100)
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)
}
