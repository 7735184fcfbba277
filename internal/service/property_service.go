package service

import (
	"context"

	"github.com/rcliao/taskmarket/internal/domain"
)

type PropertyService struct {
	storage PropertyStorage
}

func NewPropertyService(storage PropertyStorage) *PropertyService {
	return &PropertyService{
		storage: storage,
	}
}

func (s *PropertyService) Create(ctx context.Context, creatorID, name string) (*domain.Property, error) {
	property := domain.NewProperty(creatorID, name)
	if err := validateStruct(property); err != nil {
		return nil, err
	}
	if err := s.storage.CreateProperty(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

func (s *PropertyService) Get(ctx context.Context, id string) (*domain.Property, error) {
	return s.storage.GetProperty(ctx, id)
}

func (s *PropertyService) List(ctx context.Context) ([]*domain.Property, error) {
	return s.storage.ListProperties(ctx)
}

// Link tags a task; only the task owner may do it.
func (s *PropertyService) Link(ctx context.Context, taskID, propertyID, userID string) error {
	if err := s.requireOwner(ctx, taskID, userID); err != nil {
		return err
	}
	return s.storage.LinkTaskProperty(ctx, taskID, propertyID)
}

func (s *PropertyService) Unlink(ctx context.Context, taskID, propertyID, userID string) error {
	if err := s.requireOwner(ctx, taskID, userID); err != nil {
		return err
	}
	return s.storage.UnlinkTaskProperty(ctx, taskID, propertyID)
}

// ForTask returns the properties tagged on a task.
func (s *PropertyService) ForTask(ctx context.Context, taskID string) ([]*domain.Property, error) {
	ids, err := s.storage.TaskProperties(ctx, taskID)
	if err != nil {
		return nil, err
	}

	props := make([]*domain.Property, 0, len(ids))
	for _, id := range ids {
		p, err := s.storage.GetProperty(ctx, id)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, nil
}

func (s *PropertyService) requireOwner(ctx context.Context, taskID, userID string) error {
	task, err := s.storage.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.OwnerID != userID {
		return domain.NewValidationError("task", "Only the owner of the task can change its properties.")
	}
	return nil
}
