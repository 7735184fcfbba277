package mcp

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskmarket/internal/domain"
	"github.com/rcliao/taskmarket/internal/recommend"
	"github.com/rcliao/taskmarket/internal/service"
	"github.com/rcliao/taskmarket/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := storage.NewMemoryStorage()
	return NewServer(
		service.NewTaskService(store),
		service.NewPropertyService(store),
		service.NewUserService(store),
		service.NewRecommendService(recommend.NewRanker(store), store, 0, 0),
	)
}

func call(t *testing.T, s *Server, method string, params interface{}) interface{} {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		var err error
		raw, err = json.Marshal(params)
		require.NoError(t, err)
	}
	result, err := s.HandleCommand(context.Background(), method, raw)
	require.NoError(t, err, method)
	return result
}

func newUser(t *testing.T, s *Server, name string, employer bool) *domain.User {
	t.Helper()
	user := call(t, s, "taskmarket.user.create", CreateUserParams{Username: name, Email: name + "@example.com"}).(*domain.User)
	call(t, s, "taskmarket.user.profile", SetProfileParams{UserID: user.ID, IsEmployer: employer})
	return user
}

func TestServer_TaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	boss := newUser(t, s, "boss", true)
	worker := newUser(t, s, "worker", false)

	prop := call(t, s, "taskmarket.property.create", CreatePropertyParams{UserID: boss.ID, Name: "cleaning"}).(*domain.Property)
	task := call(t, s, "taskmarket.task.create", CreateTaskParams{
		UserID:      boss.ID,
		Name:        "Kitchen",
		Description: "Clean the kitchen floor",
		Properties:  []string{prop.ID},
	}).(*domain.Task)

	props := call(t, s, "taskmarket.task.properties", TaskParams{ID: task.ID}).([]*domain.Property)
	require.Len(t, props, 1)
	assert.Equal(t, "cleaning", props[0].Name)

	for _, step := range []struct {
		method string
		userID string
		status domain.TaskStatus
	}{
		{"taskmarket.task.assign", worker.ID, domain.StatusInProgress},
		{"taskmarket.task.submit", worker.ID, domain.StatusInReview},
		{"taskmarket.task.approve", boss.ID, domain.StatusDone},
	} {
		got := call(t, s, step.method, TaskParams{ID: task.ID, UserID: step.userID}).(*domain.Task)
		assert.Equal(t, step.status, got.Status, step.method)
	}

	summary := call(t, s, "taskmarket.user.summary", UserParams{UserID: worker.ID}).(*domain.UserSummary)
	assert.Equal(t, 1, summary.CompletedTasks)
}

func TestServer_TaskUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	boss := newUser(t, s, "boss", true)
	task := call(t, s, "taskmarket.task.create", CreateTaskParams{UserID: boss.ID, Name: "Old", Description: "Old description"}).(*domain.Task)

	name := "New"
	updated := call(t, s, "taskmarket.task.update", UpdateTaskParams{ID: task.ID, UserID: boss.ID, Name: &name}).(*domain.Task)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "Old description", updated.Description)

	call(t, s, "taskmarket.task.delete", TaskParams{ID: task.ID, UserID: boss.ID})
	_, err := s.HandleCommand(context.Background(), "taskmarket.task.get", mustJSON(TaskParams{ID: task.ID}))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServer_TaskListFilters(t *testing.T) {
	s := newTestServer(t)
	boss := newUser(t, s, "boss", true)
	open := call(t, s, "taskmarket.task.create", CreateTaskParams{UserID: boss.ID, Name: "Open", Description: "Still open"}).(*domain.Task)
	closed := call(t, s, "taskmarket.task.create", CreateTaskParams{UserID: boss.ID, Name: "Closed", Description: "Withdrawn"}).(*domain.Task)
	call(t, s, "taskmarket.task.deactivate", TaskParams{ID: closed.ID, UserID: boss.ID})

	active := true
	tasks := call(t, s, "taskmarket.task.list", ListTasksParams{Active: &active}).([]*domain.Task)
	require.Len(t, tasks, 1)
	assert.Equal(t, open.ID, tasks[0].ID)

	bogus := domain.TaskStatus("Sleeping")
	_, err := s.HandleCommand(context.Background(), "taskmarket.task.list", mustJSON(ListTasksParams{Status: &bogus}))
	assert.True(t, domain.IsValidation(err))
}

func TestServer_Recommend(t *testing.T) {
	s := newTestServer(t)
	boss := newUser(t, s, "boss", true)
	worker := newUser(t, s, "worker", false)

	cleaning := call(t, s, "taskmarket.property.create", CreatePropertyParams{UserID: boss.ID, Name: "cleaning"}).(*domain.Property)
	call(t, s, "taskmarket.user.interest", SetInterestParams{UserID: worker.ID, PropertyID: cleaning.ID})

	windows := call(t, s, "taskmarket.task.create", CreateTaskParams{
		UserID:      boss.ID,
		Name:        "Windows",
		Description: "Clean kitchen windows",
		Properties:  []string{cleaning.ID},
	}).(*domain.Task)
	call(t, s, "taskmarket.task.create", CreateTaskParams{UserID: boss.ID, Name: "Engine", Description: "Repair the car engine"})

	page := call(t, s, "taskmarket.recommend", RecommendParams{UserID: worker.ID, PageSize: 1}).(*service.RecommendationPage)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, windows.ID, page.Items[0].Task.ID)
}

func TestServer_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.HandleCommand(ctx, "taskmarket.unknown.command", nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.Nil(t, result)

	_, err = s.HandleCommand(ctx, "taskmarket.user.create", json.RawMessage(`{"username":`))
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = s.HandleCommand(ctx, "taskmarket.recommend", json.RawMessage(`{}`))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This field is required.", verr.Fields["userId"])

	_, err = s.HandleCommand(ctx, "taskmarket.recommend", mustJSON(RecommendParams{UserID: "missing"}))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToolsMapToCommands(t *testing.T) {
	s := newTestServer(t)
	for _, tool := range tools {
		_, err := s.HandleCommand(context.Background(), tool.Command, nil)
		assert.NotErrorIs(t, err, ErrUnknownMethod, tool.Name)

		got, ok := toolByName(tool.Name)
		assert.True(t, ok)
		assert.Equal(t, tool.Command, got.Command)
	}
}
