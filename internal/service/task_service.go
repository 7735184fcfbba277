package service

import (
	"context"
	"sync"

	"github.com/rcliao/taskmarket/internal/domain"
)

type TaskService struct {
	storage TaskStorage

	// serializes read-modify-write lifecycle changes
	mu sync.Mutex
}

func NewTaskService(storage TaskStorage) *TaskService {
	return &TaskService{
		storage: storage,
	}
}

// Create publishes a new task owned by ownerID, who must be an employer.
func (s *TaskService) Create(ctx context.Context, ownerID, name, description string) (*domain.Task, error) {
	if err := requireRole(ctx, s.storage, ownerID, true, "owner", "Only employers can create tasks."); err != nil {
		return nil, err
	}

	task := domain.NewTask(ownerID, name, description)
	if err := validateStruct(task); err != nil {
		return nil, err
	}
	if err := s.storage.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	return s.storage.GetTask(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	return s.storage.ListTasks(ctx, filter)
}

func (s *TaskService) UpdateDetails(ctx context.Context, id, userID string, name, description, output *string) (*domain.Task, error) {
	return s.apply(ctx, id, func(task *domain.Task) error {
		if err := task.UpdateDetails(userID, name, description, output); err != nil {
			return err
		}
		return validateStruct(task)
	})
}

// Assign lets an employee claim an open task.
func (s *TaskService) Assign(ctx context.Context, id, userID string) (*domain.Task, error) {
	if err := requireRole(ctx, s.storage, userID, false, "assignee", "Only employees can take tasks."); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, func(task *domain.Task) error { return task.Assign(userID) })
}

func (s *TaskService) Unassign(ctx context.Context, id, userID string) (*domain.Task, error) {
	return s.apply(ctx, id, func(task *domain.Task) error { return task.Unassign(userID) })
}

func (s *TaskService) Submit(ctx context.Context, id, userID string) (*domain.Task, error) {
	return s.apply(ctx, id, func(task *domain.Task) error { return task.Submit(userID) })
}

func (s *TaskService) Approve(ctx context.Context, id, userID string) (*domain.Task, error) {
	return s.apply(ctx, id, func(task *domain.Task) error { return task.Approve(userID) })
}

func (s *TaskService) Deactivate(ctx context.Context, id, userID string) (*domain.Task, error) {
	return s.apply(ctx, id, func(task *domain.Task) error { return task.Deactivate(userID) })
}

func (s *TaskService) Delete(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.storage.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if task.OwnerID != userID {
		return domain.NewValidationError("owner", "Only the owner of the task can delete it.")
	}
	return s.storage.DeleteTask(ctx, id)
}

func (s *TaskService) apply(ctx context.Context, id string, change func(*domain.Task) error) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.storage.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(task); err != nil {
		return nil, err
	}
	if err := s.storage.SaveTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}
