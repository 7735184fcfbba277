package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/rcliao/taskmarket/internal/domain"
)

// FileStorage keeps the whole marketplace in memory and writes a JSON
// snapshot to disk after every change. Reads are served from memory.
type FileStorage struct {
	*MemoryStorage
	path string
	mu   sync.Mutex
}

type snapshot struct {
	Tasks          []*domain.Task        `json:"tasks"`
	Properties     []*domain.Property    `json:"properties"`
	TaskProperties []domain.TaskProperty `json:"taskProperties"`
	Users          []*domain.User        `json:"users"`
	Profiles       []domain.Profile      `json:"profiles"`
	Interests      []domain.UserInterest `json:"interests"`
	Behaviors      []domain.UserBehavior `json:"behaviors"`
}

func NewFileStorage(basePath string) (*FileStorage, error) {
	dir := filepath.Join(basePath, ".taskmarket")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	fs := &FileStorage{
		MemoryStorage: NewMemoryStorage(),
		path:          filepath.Join(dir, "store.json"),
	}

	var snap snapshot
	err := fs.loadJSON(&snap)
	switch {
	case os.IsNotExist(err):
		if err := fs.saveJSON(fs.snapshot()); err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load %s: %w", fs.path, err)
	default:
		fs.restore(snap)
	}

	return fs, nil
}

func (fs *FileStorage) saveJSON(data interface{}) error {
	tempPath := fs.path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	return os.Rename(tempPath, fs.path)
}

func (fs *FileStorage) loadJSON(target interface{}) error {
	file, err := os.Open(fs.path)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(target)
}

// mutate applies fn to the in-memory state and persists the result. If the
// write fails the in-memory state is rolled back.
func (fs *FileStorage) mutate(fn func() error) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev := fs.snapshot()
	if err := fn(); err != nil {
		return err
	}
	if err := fs.saveJSON(fs.snapshot()); err != nil {
		fs.reset(prev)
		return fmt.Errorf("persist %s: %w", fs.path, err)
	}
	return nil
}

func (fs *FileStorage) CreateTask(ctx context.Context, task *domain.Task) error {
	return fs.mutate(func() error { return fs.MemoryStorage.CreateTask(ctx, task) })
}

func (fs *FileStorage) SaveTask(ctx context.Context, task *domain.Task) error {
	return fs.mutate(func() error { return fs.MemoryStorage.SaveTask(ctx, task) })
}

func (fs *FileStorage) DeleteTask(ctx context.Context, id string) error {
	return fs.mutate(func() error { return fs.MemoryStorage.DeleteTask(ctx, id) })
}

func (fs *FileStorage) CreateProperty(ctx context.Context, property *domain.Property) error {
	return fs.mutate(func() error { return fs.MemoryStorage.CreateProperty(ctx, property) })
}

func (fs *FileStorage) LinkTaskProperty(ctx context.Context, taskID, propertyID string) error {
	return fs.mutate(func() error { return fs.MemoryStorage.LinkTaskProperty(ctx, taskID, propertyID) })
}

func (fs *FileStorage) UnlinkTaskProperty(ctx context.Context, taskID, propertyID string) error {
	return fs.mutate(func() error { return fs.MemoryStorage.UnlinkTaskProperty(ctx, taskID, propertyID) })
}

func (fs *FileStorage) CreateUser(ctx context.Context, user *domain.User) error {
	return fs.mutate(func() error { return fs.MemoryStorage.CreateUser(ctx, user) })
}

func (fs *FileStorage) SaveProfile(ctx context.Context, profile domain.Profile) error {
	return fs.mutate(func() error { return fs.MemoryStorage.SaveProfile(ctx, profile) })
}

func (fs *FileStorage) SetUserInterest(ctx context.Context, interest domain.UserInterest) error {
	return fs.mutate(func() error { return fs.MemoryStorage.SetUserInterest(ctx, interest) })
}

func (fs *FileStorage) SetUserBehavior(ctx context.Context, behavior domain.UserBehavior) error {
	return fs.mutate(func() error { return fs.MemoryStorage.SetUserBehavior(ctx, behavior) })
}
