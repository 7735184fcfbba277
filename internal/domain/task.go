package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "Not started"
	StatusInProgress TaskStatus = "In progress"
	StatusInReview   TaskStatus = "In review"
	StatusDone       TaskStatus = "Done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusInReview, StatusDone:
		return true
	}
	return false
}

// Task is a unit of work posted by an employer and claimed by an employee.
type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name" validate:"required,max=80"`
	Description string     `json:"description" validate:"required,max=500"`
	Output      string     `json:"output"`
	Status      TaskStatus `json:"status"`
	AssigneeID  *string    `json:"assignee,omitempty"`
	OwnerID     string     `json:"owner" validate:"required"`
	IsSubmitted bool       `json:"isSubmitted"`
	IsApproved  bool       `json:"isApproved"`
	IsActive    bool       `json:"isActive"`
	CreatedOn   time.Time  `json:"createdOn"`
	UpdatedOn   time.Time  `json:"updatedOn"`
	SubmittedOn *time.Time `json:"submittedOn,omitempty"`
	ApprovedOn  *time.Time `json:"approvedOn,omitempty"`
}

func NewTask(ownerID, name, description string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Status:      StatusNotStarted,
		OwnerID:     ownerID,
		IsActive:    true,
		CreatedOn:   now,
		UpdatedOn:   now,
	}
}

// IsAssignedTo reports whether userID is the current assignee.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// Assign claims an active, unassigned task for userID.
func (t *Task) Assign(userID string) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if t.AssigneeID != nil {
		if *t.AssigneeID == userID {
			return NewValidationError("assignee", "You are already assigned to this task.")
		}
		return NewValidationError("assignee", "Only the current task assignee can change this field.")
	}
	t.AssigneeID = &userID
	t.Status = StatusInProgress
	t.touch()
	return nil
}

// Unassign releases the task; only the current assignee may do it.
func (t *Task) Unassign(userID string) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if !t.IsAssignedTo(userID) {
		return NewValidationError("assignee", "Only the current task assignee can change this field.")
	}
	t.AssigneeID = nil
	t.Status = StatusNotStarted
	t.IsSubmitted = false
	t.SubmittedOn = nil
	t.touch()
	return nil
}

// Submit puts an in-progress task into review.
func (t *Task) Submit(userID string) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if t.Status == StatusNotStarted {
		return NewValidationError("isSubmitted", "Cannot submit before the task is started.")
	}
	if !t.IsAssignedTo(userID) {
		return NewValidationError("isSubmitted", "Only the task assignee can change this field.")
	}
	now := time.Now().UTC()
	t.IsSubmitted = true
	t.Status = StatusInReview
	t.SubmittedOn = &now
	t.touch()
	return nil
}

// Approve completes a task under review. Approved tasks leave the active set.
func (t *Task) Approve(ownerID string) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if t.Status == StatusNotStarted || t.Status == StatusInProgress {
		return NewValidationError("isApproved", "Cannot approve before the task is submitted.")
	}
	if t.OwnerID != ownerID {
		return NewValidationError("isApproved", "Only the task owner can change this field.")
	}
	now := time.Now().UTC()
	t.IsApproved = true
	t.Status = StatusDone
	t.ApprovedOn = &now
	t.IsActive = false
	t.touch()
	return nil
}

// UpdateDetails changes name, description and output; only the owner may do it.
func (t *Task) UpdateDetails(ownerID string, name, description, output *string) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if t.OwnerID != ownerID {
		verr := &ValidationError{}
		if name != nil {
			verr.Add("name", "Only the owner of the task can change this field.")
		}
		if description != nil {
			verr.Add("description", "Only the owner of the task can change this field.")
		}
		if output != nil {
			verr.Add("output", "Only the owner of the task can change this field.")
		}
		return verr.OrNil()
	}
	if name != nil {
		t.Name = *name
	}
	if description != nil {
		t.Description = *description
	}
	if output != nil {
		t.Output = *output
	}
	t.touch()
	return nil
}

// Deactivate withdraws the task from the marketplace.
func (t *Task) Deactivate(ownerID string) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if t.OwnerID != ownerID {
		return NewValidationError("isActive", "Only the owner of the task can change this field.")
	}
	t.IsActive = false
	t.touch()
	return nil
}

func (t *Task) checkActive() error {
	if !t.IsActive {
		return NewValidationError("task", "You cannot update an inactive task")
	}
	return nil
}

func (t *Task) touch() {
	t.UpdatedOn = time.Now().UTC()
}

type TaskFilter struct {
	Active     *bool
	Status     *TaskStatus
	OwnerID    *string
	AssigneeID *string
}

// Matches reports whether the task satisfies every set field of the filter.
func (f TaskFilter) Matches(t *Task) bool {
	if f.Active != nil && t.IsActive != *f.Active {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.OwnerID != nil && t.OwnerID != *f.OwnerID {
		return false
	}
	if f.AssigneeID != nil && !t.IsAssignedTo(*f.AssigneeID) {
		return false
	}
	return true
}
