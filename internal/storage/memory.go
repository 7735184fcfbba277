package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rcliao/taskmarket/internal/domain"
)

type behaviorKey struct {
	userID string
	taskID string
}

type interestKey struct {
	userID     string
	propertyID string
}

type MemoryStorage struct {
	mu             sync.RWMutex
	tasks          map[string]*domain.Task
	properties     map[string]*domain.Property
	taskProperties map[string]map[string]struct{}
	users          map[string]*domain.User
	profiles       map[string]domain.Profile
	interests      map[interestKey]bool
	behaviors      map[behaviorKey]bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks:          make(map[string]*domain.Task),
		properties:     make(map[string]*domain.Property),
		taskProperties: make(map[string]map[string]struct{}),
		users:          make(map[string]*domain.User),
		profiles:       make(map[string]domain.Profile),
		interests:      make(map[interestKey]bool),
		behaviors:      make(map[behaviorKey]bool),
	}
}

func (ms *MemoryStorage) Close() error {
	return nil
}

// Task Repository Implementation
func (ms *MemoryStorage) CreateTask(_ context.Context, task *domain.Task) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[task.ID]; exists {
		return alreadyExists("task", task.ID)
	}

	stored := *task
	ms.tasks[task.ID] = &stored
	return nil
}

func (ms *MemoryStorage) SaveTask(_ context.Context, task *domain.Task) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[task.ID]; !exists {
		return domain.NotFound("task", task.ID)
	}

	stored := *task
	ms.tasks[task.ID] = &stored
	return nil
}

func (ms *MemoryStorage) GetTask(_ context.Context, id string) (*domain.Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	task, exists := ms.tasks[id]
	if !exists {
		return nil, domain.NotFound("task", id)
	}

	cp := *task
	return &cp, nil
}

func (ms *MemoryStorage) ListTasks(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]*domain.Task, 0, len(ms.tasks))
	for _, task := range ms.tasks {
		if !filter.Matches(task) {
			continue
		}
		cp := *task
		result = append(result, &cp)
	}

	sortTasks(result)
	return result, nil
}

// DeleteTask removes the task with its tag links and behavior records.
func (ms *MemoryStorage) DeleteTask(_ context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[id]; !exists {
		return domain.NotFound("task", id)
	}

	delete(ms.tasks, id)
	delete(ms.taskProperties, id)
	for key := range ms.behaviors {
		if key.taskID == id {
			delete(ms.behaviors, key)
		}
	}
	return nil
}

// Property Repository Implementation
func (ms *MemoryStorage) CreateProperty(_ context.Context, property *domain.Property) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.properties[property.ID]; exists {
		return alreadyExists("property", property.ID)
	}

	stored := *property
	ms.properties[property.ID] = &stored
	return nil
}

func (ms *MemoryStorage) GetProperty(_ context.Context, id string) (*domain.Property, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	property, exists := ms.properties[id]
	if !exists {
		return nil, domain.NotFound("property", id)
	}

	cp := *property
	return &cp, nil
}

func (ms *MemoryStorage) ListProperties(_ context.Context) ([]*domain.Property, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]*domain.Property, 0, len(ms.properties))
	for _, property := range ms.properties {
		cp := *property
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (ms *MemoryStorage) LinkTaskProperty(_ context.Context, taskID, propertyID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[taskID]; !exists {
		return domain.NotFound("task", taskID)
	}
	if _, exists := ms.properties[propertyID]; !exists {
		return domain.NotFound("property", propertyID)
	}

	links, ok := ms.taskProperties[taskID]
	if !ok {
		links = make(map[string]struct{})
		ms.taskProperties[taskID] = links
	}
	links[propertyID] = struct{}{}
	return nil
}

func (ms *MemoryStorage) UnlinkTaskProperty(_ context.Context, taskID, propertyID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	links, ok := ms.taskProperties[taskID]
	if !ok {
		return domain.NotFound("task property", taskID+"/"+propertyID)
	}
	if _, ok := links[propertyID]; !ok {
		return domain.NotFound("task property", taskID+"/"+propertyID)
	}
	delete(links, propertyID)
	return nil
}

func (ms *MemoryStorage) TaskProperties(_ context.Context, taskID string) ([]string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return sortedKeys(ms.taskProperties[taskID]), nil
}

// User Repository Implementation
func (ms *MemoryStorage) CreateUser(_ context.Context, user *domain.User) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.users[user.ID]; exists {
		return alreadyExists("user", user.ID)
	}
	for _, existing := range ms.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return alreadyExists("username", user.Username)
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return alreadyExists("email", user.Email)
		}
	}

	stored := *user
	ms.users[user.ID] = &stored
	return nil
}

func (ms *MemoryStorage) GetUser(_ context.Context, id string) (*domain.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	user, exists := ms.users[id]
	if !exists {
		return nil, domain.NotFound("user", id)
	}

	cp := *user
	return &cp, nil
}

func (ms *MemoryStorage) SaveProfile(_ context.Context, profile domain.Profile) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.users[profile.UserID]; !exists {
		return domain.NotFound("user", profile.UserID)
	}
	if _, exists := ms.profiles[profile.UserID]; exists {
		return alreadyExists("profile", profile.UserID)
	}

	ms.profiles[profile.UserID] = profile
	return nil
}

func (ms *MemoryStorage) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	profile, exists := ms.profiles[userID]
	if !exists {
		return nil, domain.NotFound("profile", userID)
	}
	return &profile, nil
}

func (ms *MemoryStorage) SetUserInterest(_ context.Context, interest domain.UserInterest) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.users[interest.UserID]; !exists {
		return domain.NotFound("user", interest.UserID)
	}
	if _, exists := ms.properties[interest.PropertyID]; !exists {
		return domain.NotFound("property", interest.PropertyID)
	}

	ms.interests[interestKey{interest.UserID, interest.PropertyID}] = interest.Interested
	return nil
}

func (ms *MemoryStorage) ListUserInterests(_ context.Context, userID string) ([]domain.UserInterest, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var result []domain.UserInterest
	for key, interested := range ms.interests {
		if key.userID == userID {
			result = append(result, domain.UserInterest{UserID: userID, PropertyID: key.propertyID, Interested: interested})
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].PropertyID < result[j].PropertyID })
	return result, nil
}

func (ms *MemoryStorage) SetUserBehavior(_ context.Context, behavior domain.UserBehavior) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.users[behavior.UserID]; !exists {
		return domain.NotFound("user", behavior.UserID)
	}
	if _, exists := ms.tasks[behavior.TaskID]; !exists {
		return domain.NotFound("task", behavior.TaskID)
	}

	ms.behaviors[behaviorKey{behavior.UserID, behavior.TaskID}] = behavior.Like
	return nil
}

func (ms *MemoryStorage) ListUserBehaviors(_ context.Context, userID string) ([]domain.UserBehavior, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var result []domain.UserBehavior
	for key, like := range ms.behaviors {
		if key.userID == userID {
			result = append(result, domain.UserBehavior{UserID: userID, TaskID: key.taskID, Like: like})
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].TaskID < result[j].TaskID })
	return result, nil
}

// Ranking store implementation
func (ms *MemoryStorage) ActiveTasks(ctx context.Context) ([]*domain.Task, error) {
	active := true
	return ms.ListTasks(ctx, domain.TaskFilter{Active: &active})
}

func (ms *MemoryStorage) UserInterests(_ context.Context, userID string) ([]string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	ids := make(map[string]struct{})
	for key, interested := range ms.interests {
		if key.userID == userID && interested {
			ids[key.propertyID] = struct{}{}
		}
	}
	return sortedKeys(ids), nil
}

func (ms *MemoryStorage) UserCompletedTaskIDs(_ context.Context, userID string) ([]string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	ids := make(map[string]struct{})
	for id, task := range ms.tasks {
		if task.Status == domain.StatusDone && task.IsAssignedTo(userID) {
			ids[id] = struct{}{}
		}
	}
	return sortedKeys(ids), nil
}

func (ms *MemoryStorage) UserLikedTaskIDs(_ context.Context, userID string) ([]string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	ids := make(map[string]struct{})
	for key, like := range ms.behaviors {
		if key.userID == userID && like {
			ids[key.taskID] = struct{}{}
		}
	}
	return sortedKeys(ids), nil
}

func (ms *MemoryStorage) ResolveTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return ms.GetTask(ctx, taskID)
}

func (ms *MemoryStorage) snapshot() snapshot {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	snap := snapshot{
		Tasks:          make([]*domain.Task, 0, len(ms.tasks)),
		Properties:     make([]*domain.Property, 0, len(ms.properties)),
		TaskProperties: []domain.TaskProperty{},
		Users:          make([]*domain.User, 0, len(ms.users)),
		Profiles:       make([]domain.Profile, 0, len(ms.profiles)),
		Interests:      make([]domain.UserInterest, 0, len(ms.interests)),
		Behaviors:      make([]domain.UserBehavior, 0, len(ms.behaviors)),
	}

	for _, t := range ms.tasks {
		snap.Tasks = append(snap.Tasks, t)
	}
	sortTasks(snap.Tasks)
	for _, p := range ms.properties {
		snap.Properties = append(snap.Properties, p)
	}
	sort.Slice(snap.Properties, func(i, j int) bool { return snap.Properties[i].ID < snap.Properties[j].ID })
	for taskID, links := range ms.taskProperties {
		for _, propertyID := range sortedKeys(links) {
			snap.TaskProperties = append(snap.TaskProperties, domain.TaskProperty{TaskID: taskID, PropertyID: propertyID})
		}
	}
	sort.SliceStable(snap.TaskProperties, func(i, j int) bool { return snap.TaskProperties[i].TaskID < snap.TaskProperties[j].TaskID })
	for _, u := range ms.users {
		snap.Users = append(snap.Users, u)
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })
	for _, p := range ms.profiles {
		snap.Profiles = append(snap.Profiles, p)
	}
	sort.Slice(snap.Profiles, func(i, j int) bool { return snap.Profiles[i].UserID < snap.Profiles[j].UserID })
	for key, interested := range ms.interests {
		snap.Interests = append(snap.Interests, domain.UserInterest{UserID: key.userID, PropertyID: key.propertyID, Interested: interested})
	}
	sort.Slice(snap.Interests, func(i, j int) bool {
		if snap.Interests[i].UserID != snap.Interests[j].UserID {
			return snap.Interests[i].UserID < snap.Interests[j].UserID
		}
		return snap.Interests[i].PropertyID < snap.Interests[j].PropertyID
	})
	for key, like := range ms.behaviors {
		snap.Behaviors = append(snap.Behaviors, domain.UserBehavior{UserID: key.userID, TaskID: key.taskID, Like: like})
	}
	sort.Slice(snap.Behaviors, func(i, j int) bool {
		if snap.Behaviors[i].UserID != snap.Behaviors[j].UserID {
			return snap.Behaviors[i].UserID < snap.Behaviors[j].UserID
		}
		return snap.Behaviors[i].TaskID < snap.Behaviors[j].TaskID
	})

	return snap
}

// reset replaces the whole state with snap.
func (ms *MemoryStorage) reset(snap snapshot) {
	ms.mu.Lock()
	ms.tasks = make(map[string]*domain.Task)
	ms.properties = make(map[string]*domain.Property)
	ms.taskProperties = make(map[string]map[string]struct{})
	ms.users = make(map[string]*domain.User)
	ms.profiles = make(map[string]domain.Profile)
	ms.interests = make(map[interestKey]bool)
	ms.behaviors = make(map[behaviorKey]bool)
	ms.mu.Unlock()

	ms.restore(snap)
}

func (ms *MemoryStorage) restore(snap snapshot) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, t := range snap.Tasks {
		ms.tasks[t.ID] = t
	}
	for _, p := range snap.Properties {
		ms.properties[p.ID] = p
	}
	for _, tp := range snap.TaskProperties {
		links, ok := ms.taskProperties[tp.TaskID]
		if !ok {
			links = make(map[string]struct{})
			ms.taskProperties[tp.TaskID] = links
		}
		links[tp.PropertyID] = struct{}{}
	}
	for _, u := range snap.Users {
		ms.users[u.ID] = u
	}
	for _, p := range snap.Profiles {
		ms.profiles[p.UserID] = p
	}
	for _, i := range snap.Interests {
		ms.interests[interestKey{i.UserID, i.PropertyID}] = i.Interested
	}
	for _, b := range snap.Behaviors {
		ms.behaviors[behaviorKey{b.UserID, b.TaskID}] = b.Like
	}
}
