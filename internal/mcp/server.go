package mcp

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rcliao/taskmarket/internal/domain"
	"github.com/rcliao/taskmarket/internal/logging"
	"github.com/rcliao/taskmarket/internal/service"
)

var (
	ErrUnknownMethod = errors.New("unknown method")
	ErrInvalidParams = errors.New("invalid parameters")
)

type Server struct {
	tasks      *service.TaskService
	properties *service.PropertyService
	users      *service.UserService
	recommend  *service.RecommendService
	log        zerolog.Logger
}

func NewServer(tasks *service.TaskService, properties *service.PropertyService, users *service.UserService, recommend *service.RecommendService) *Server {
	return &Server{
		tasks:      tasks,
		properties: properties,
		users:      users,
		recommend:  recommend,
		log:        logging.With("mcp"),
	}
}

func (s *Server) HandleCommand(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	s.log.Debug().Str("method", method).Msg("handling command")

	switch method {
	// User commands
	case "taskmarket.user.create":
		return s.handleUserCreate(ctx, params)
	case "taskmarket.user.get":
		return s.handleUserGet(ctx, params)
	case "taskmarket.user.profile":
		return s.handleUserProfile(ctx, params)
	case "taskmarket.user.interest":
		return s.handleUserInterest(ctx, params)
	case "taskmarket.user.behavior":
		return s.handleUserBehavior(ctx, params)
	case "taskmarket.user.summary":
		return s.handleUserSummary(ctx, params)

	// Property commands
	case "taskmarket.property.create":
		return s.handlePropertyCreate(ctx, params)
	case "taskmarket.property.list":
		return s.properties.List(ctx)

	// Task commands
	case "taskmarket.task.create":
		return s.handleTaskCreate(ctx, params)
	case "taskmarket.task.get":
		return s.handleTaskGet(ctx, params)
	case "taskmarket.task.list":
		return s.handleTaskList(ctx, params)
	case "taskmarket.task.update":
		return s.handleTaskUpdate(ctx, params)
	case "taskmarket.task.deactivate":
		return s.handleTaskAction(ctx, params, s.tasks.Deactivate)
	case "taskmarket.task.delete":
		return s.handleTaskDelete(ctx, params)
	case "taskmarket.task.assign":
		return s.handleTaskAction(ctx, params, s.tasks.Assign)
	case "taskmarket.task.unassign":
		return s.handleTaskAction(ctx, params, s.tasks.Unassign)
	case "taskmarket.task.submit":
		return s.handleTaskAction(ctx, params, s.tasks.Submit)
	case "taskmarket.task.approve":
		return s.handleTaskAction(ctx, params, s.tasks.Approve)
	case "taskmarket.task.property.link":
		return s.handleTaskPropertyLink(ctx, params, false)
	case "taskmarket.task.property.unlink":
		return s.handleTaskPropertyLink(ctx, params, true)
	case "taskmarket.task.properties":
		return s.handleTaskProperties(ctx, params)

	// Recommendations
	case "taskmarket.recommend":
		return s.handleRecommend(ctx, params)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// decode treats missing params as an empty object.
func decode(params json.RawMessage, v interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

// required reports every empty field by its parameter name.
func required(fields ...string) error {
	verr := &domain.ValidationError{}
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] == "" {
			verr.Add(fields[i], "This field is required.")
		}
	}
	return verr.OrNil()
}

// User handlers
type CreateUserParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *Server) handleUserCreate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p CreateUserParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return s.users.Create(ctx, p.Username, p.Email)
}

type UserParams struct {
	UserID string `json:"userId"`
}

func (s *Server) handleUserGet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p UserParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("userId", p.UserID); err != nil {
		return nil, err
	}
	return s.users.Get(ctx, p.UserID)
}

type SetProfileParams struct {
	UserID     string `json:"userId"`
	IsEmployer bool   `json:"isEmployer"`
}

func (s *Server) handleUserProfile(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p SetProfileParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("userId", p.UserID); err != nil {
		return nil, err
	}
	return s.users.SetProfile(ctx, p.UserID, p.IsEmployer)
}

type SetInterestParams struct {
	UserID     string `json:"userId"`
	PropertyID string `json:"propertyId"`
	Interested *bool  `json:"interested,omitempty"`
}

func (s *Server) handleUserInterest(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p SetInterestParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("userId", p.UserID, "propertyId", p.PropertyID); err != nil {
		return nil, err
	}

	interested := true
	if p.Interested != nil {
		interested = *p.Interested
	}
	if err := s.users.SetInterest(ctx, p.UserID, p.PropertyID, interested); err != nil {
		return nil, err
	}
	return &domain.UserInterest{UserID: p.UserID, PropertyID: p.PropertyID, Interested: interested}, nil
}

type RecordBehaviorParams struct {
	UserID string `json:"userId"`
	TaskID string `json:"taskId"`
	Like   bool   `json:"like"`
}

func (s *Server) handleUserBehavior(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p RecordBehaviorParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("userId", p.UserID, "taskId", p.TaskID); err != nil {
		return nil, err
	}
	if err := s.users.RecordBehavior(ctx, p.UserID, p.TaskID, p.Like); err != nil {
		return nil, err
	}
	return &domain.UserBehavior{UserID: p.UserID, TaskID: p.TaskID, Like: p.Like}, nil
}

func (s *Server) handleUserSummary(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p UserParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("userId", p.UserID); err != nil {
		return nil, err
	}
	return s.users.Summary(ctx, p.UserID)
}

// Property handlers
type CreatePropertyParams struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

func (s *Server) handlePropertyCreate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p CreatePropertyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("userId", p.UserID); err != nil {
		return nil, err
	}
	return s.properties.Create(ctx, p.UserID, p.Name)
}

// Task handlers
type CreateTaskParams struct {
	UserID      string   `json:"userId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Properties  []string `json:"properties,omitempty"`
}

func (s *Server) handleTaskCreate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p CreateTaskParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("userId", p.UserID); err != nil {
		return nil, err
	}

	task, err := s.tasks.Create(ctx, p.UserID, p.Name, p.Description)
	if err != nil {
		return nil, err
	}
	for _, propertyID := range p.Properties {
		if err := s.properties.Link(ctx, task.ID, propertyID, p.UserID); err != nil {
			return nil, fmt.Errorf("link property %s to task %s: %w", propertyID, task.ID, err)
		}
	}
	return task, nil
}

type TaskParams struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
}

func (s *Server) handleTaskGet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p TaskParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("id", p.ID); err != nil {
		return nil, err
	}
	return s.tasks.Get(ctx, p.ID)
}

type ListTasksParams struct {
	Active     *bool              `json:"active,omitempty"`
	Status     *domain.TaskStatus `json:"status,omitempty"`
	OwnerID    *string            `json:"ownerId,omitempty"`
	AssigneeID *string            `json:"assigneeId,omitempty"`
}

func (s *Server) handleTaskList(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ListTasksParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Status != nil && !p.Status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("%q is not a valid choice.", *p.Status))
	}

	return s.tasks.List(ctx, domain.TaskFilter{
		Active:     p.Active,
		Status:     p.Status,
		OwnerID:    p.OwnerID,
		AssigneeID: p.AssigneeID,
	})
}

type UpdateTaskParams struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Output      *string `json:"output,omitempty"`
}

func (s *Server) handleTaskUpdate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p UpdateTaskParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("id", p.ID, "userId", p.UserID); err != nil {
		return nil, err
	}
	return s.tasks.UpdateDetails(ctx, p.ID, p.UserID, p.Name, p.Description, p.Output)
}

type taskAction func(ctx context.Context, id, userID string) (*domain.Task, error)

func (s *Server) handleTaskAction(ctx context.Context, params json.RawMessage, action taskAction) (interface{}, error) {
	var p TaskParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("id", p.ID, "userId", p.UserID); err != nil {
		return nil, err
	}
	return action(ctx, p.ID, p.UserID)
}

func (s *Server) handleTaskDelete(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p TaskParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("id", p.ID, "userId", p.UserID); err != nil {
		return nil, err
	}
	if err := s.tasks.Delete(ctx, p.ID, p.UserID); err != nil {
		return nil, err
	}
	return map[string]string{"status": "deleted", "id": p.ID}, nil
}

type LinkPropertyParams struct {
	TaskID     string `json:"taskId"`
	PropertyID string `json:"propertyId"`
	UserID     string `json:"userId"`
}

func (s *Server) handleTaskPropertyLink(ctx context.Context, params json.RawMessage, unlink bool) (interface{}, error) {
	var p LinkPropertyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("taskId", p.TaskID, "propertyId", p.PropertyID, "userId", p.UserID); err != nil {
		return nil, err
	}

	if unlink {
		if err := s.properties.Unlink(ctx, p.TaskID, p.PropertyID, p.UserID); err != nil {
			return nil, err
		}
	} else if err := s.properties.Link(ctx, p.TaskID, p.PropertyID, p.UserID); err != nil {
		return nil, err
	}
	return s.properties.ForTask(ctx, p.TaskID)
}

func (s *Server) handleTaskProperties(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p TaskParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("id", p.ID); err != nil {
		return nil, err
	}
	return s.properties.ForTask(ctx, p.ID)
}

type RecommendParams struct {
	UserID   string `json:"userId"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
}

func (s *Server) handleRecommend(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p RecommendParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := required("userId", p.UserID); err != nil {
		return nil, err
	}
	return s.recommend.Recommend(ctx, p.UserID, domain.PageRequest{Page: p.Page, PageSize: p.PageSize})
}
