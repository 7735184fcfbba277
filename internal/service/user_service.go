package service

import (
	"context"
	"fmt"

	"github.com/rcliao/taskmarket/internal/domain"
)

type UserService struct {
	storage UserStorage
}

func NewUserService(storage UserStorage) *UserService {
	return &UserService{
		storage: storage,
	}
}

func (s *UserService) Create(ctx context.Context, username, email string) (*domain.User, error) {
	user := domain.NewUser(username, email)
	if err := validateStruct(user); err != nil {
		return nil, err
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.storage.GetUser(ctx, id)
}

// SetProfile fixes the user's role once; it cannot be changed afterwards.
func (s *UserService) SetProfile(ctx context.Context, userID string, isEmployer bool) (*domain.Profile, error) {
	profile := domain.Profile{UserID: userID, IsEmployer: isEmployer}
	if err := s.storage.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetInterest declares or withdraws an employee's interest in a property.
func (s *UserService) SetInterest(ctx context.Context, userID, propertyID string, interested bool) error {
	if err := requireRole(ctx, s.storage, userID, false, "user", "Only employees can declare interests."); err != nil {
		return err
	}
	return s.storage.SetUserInterest(ctx, domain.UserInterest{
		UserID:     userID,
		PropertyID: propertyID,
		Interested: interested,
	})
}

// RecordBehavior stores a like or dislike, replacing any earlier one for
// the same task.
func (s *UserService) RecordBehavior(ctx context.Context, userID, taskID string, like bool) error {
	return s.storage.SetUserBehavior(ctx, domain.UserBehavior{
		UserID: userID,
		TaskID: taskID,
		Like:   like,
	})
}

// Summary reports what the ranker knows about a user.
func (s *UserService) Summary(ctx context.Context, userID string) (*domain.UserSummary, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &domain.UserSummary{
		User:      user,
		Interests: make([]string, 0),
	}

	profile, err := s.storage.GetProfile(ctx, userID)
	switch {
	case err == nil:
		summary.IsEmployer = &profile.IsEmployer
	case !isNotFound(err):
		return nil, err
	}

	interests, err := s.storage.ListUserInterests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("interests of %s: %w", userID, err)
	}
	for _, in := range interests {
		if in.Interested {
			summary.Interests = append(summary.Interests, in.PropertyID)
		}
	}

	behaviors, err := s.storage.ListUserBehaviors(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("behaviors of %s: %w", userID, err)
	}
	for _, b := range behaviors {
		if b.Like {
			summary.LikedTasks++
		} else {
			summary.DislikedTasks++
		}
	}

	done := domain.StatusDone
	completed, err := s.storage.ListTasks(ctx, domain.TaskFilter{AssigneeID: &userID, Status: &done})
	if err != nil {
		return nil, fmt.Errorf("completed tasks of %s: %w", userID, err)
	}
	summary.CompletedTasks = len(completed)

	owned, err := s.storage.ListTasks(ctx, domain.TaskFilter{OwnerID: &userID})
	if err != nil {
		return nil, fmt.Errorf("owned tasks of %s: %w", userID, err)
	}
	summary.OwnedTasks = len(owned)
	for _, task := range owned {
		if task.IsActive {
			summary.ActiveOwned++
		}
	}

	summary.Insights = summaryInsights(summary)
	return summary, nil
}

func summaryInsights(s *domain.UserSummary) []string {
	insights := make([]string, 0)

	if s.IsEmployer == nil {
		insights = append(insights, "No profile yet: choose employer or employee to start using the marketplace")
	}
	if s.IsEmployer != nil && *s.IsEmployer {
		if s.ActiveOwned == 0 {
			insights = append(insights, "No open tasks: publish a task so employees can find it")
		}
		return insights
	}

	if len(s.Interests) == 0 {
		insights = append(insights, "No interests declared: interest matching has nothing to score")
	}
	if s.CompletedTasks == 0 {
		insights = append(insights, "No completed tasks: history similarity is inactive")
	}
	if s.LikedTasks == 0 {
		insights = append(insights, "No liked tasks: behavior similarity is inactive")
	}
	if len(s.Interests) > 0 && s.CompletedTasks > 0 && s.LikedTasks > 0 {
		insights = append(insights, "All ranking signals are active")
	}
	return insights
}
