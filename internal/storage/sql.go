package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/taskmarket/internal/domain"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLStorage persists the marketplace in SQLite or Postgres. Query text is
// shared; only the schema and time encoding differ by dialect.
type SQLStorage struct {
	db      conn
	dialect dialect
}

func (s *SQLStorage) Close() error {
	return s.db.close()
}

func (s *SQLStorage) migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.dialect == dialectPostgres {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *SQLStorage) timeArg(t time.Time) any {
	if s.dialect == dialectSQLite {
		return t.UTC().Format(sortableTime)
	}
	return t.UTC()
}

func (s *SQLStorage) nullTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return s.timeArg(*t)
}

const taskColumns = `id, name, description, output, status, assignee_id, owner_id,
	is_submitted, is_approved, is_active, created_on, updated_on, submitted_on, approved_on`

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task      domain.Task
		status    string
		assignee  sql.NullString
		created   nullTime
		updated   nullTime
		submitted nullTime
		approved  nullTime
	)
	err := row.Scan(&task.ID, &task.Name, &task.Description, &task.Output, &status, &assignee, &task.OwnerID,
		&task.IsSubmitted, &task.IsApproved, &task.IsActive, &created, &updated, &submitted, &approved)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	if assignee.Valid {
		id := assignee.String
		task.AssigneeID = &id
	}
	task.CreatedOn = created.Time
	task.UpdatedOn = updated.Time
	task.SubmittedOn = submitted.ptr()
	task.ApprovedOn = approved.ptr()
	return &task, nil
}

func (s *SQLStorage) exists(ctx context.Context, table, id string) (bool, error) {
	var one int
	err := s.db.queryRow(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *SQLStorage) requireExists(ctx context.Context, table, kind, id string) error {
	ok, err := s.exists(ctx, table, id)
	if err != nil {
		return fmt.Errorf("look up %s %s: %w", kind, id, err)
	}
	if !ok {
		return domain.NotFound(kind, id)
	}
	return nil
}

// Task Repository Implementation
func (s *SQLStorage) CreateTask(ctx context.Context, task *domain.Task) error {
	_, err := s.db.exec(ctx, `INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Name, task.Description, task.Output, string(task.Status), task.AssigneeID, task.OwnerID,
		task.IsSubmitted, task.IsApproved, task.IsActive,
		s.timeArg(task.CreatedOn), s.timeArg(task.UpdatedOn), s.nullTimeArg(task.SubmittedOn), s.nullTimeArg(task.ApprovedOn))
	if isUniqueViolation(err) {
		return alreadyExists("task", task.ID)
	}
	if err != nil {
		return fmt.Errorf("insert task %s: %w", task.ID, err)
	}
	return nil
}

func (s *SQLStorage) SaveTask(ctx context.Context, task *domain.Task) error {
	n, err := s.db.exec(ctx, `UPDATE tasks SET name = ?, description = ?, output = ?, status = ?,
		assignee_id = ?, owner_id = ?, is_submitted = ?, is_approved = ?, is_active = ?,
		created_on = ?, updated_on = ?, submitted_on = ?, approved_on = ?
		WHERE id = ?`,
		task.Name, task.Description, task.Output, string(task.Status),
		task.AssigneeID, task.OwnerID, task.IsSubmitted, task.IsApproved, task.IsActive,
		s.timeArg(task.CreatedOn), s.timeArg(task.UpdatedOn), s.nullTimeArg(task.SubmittedOn), s.nullTimeArg(task.ApprovedOn),
		task.ID)
	if err != nil {
		return fmt.Errorf("update task %s: %w", task.ID, err)
	}
	if n == 0 {
		return domain.NotFound("task", task.ID)
	}
	return nil
}

func (s *SQLStorage) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := scanTask(s.db.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

func (s *SQLStorage) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var (
		where []string
		args  []any
	)
	if filter.Active != nil {
		where = append(where, "is_active = ?")
		args = append(args, *filter.Active)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.OwnerID != nil {
		where = append(where, "owner_id = ?")
		args = append(args, *filter.OwnerID)
	}
	if filter.AssigneeID != nil {
		where = append(where, "assignee_id = ?")
		args = append(args, *filter.AssigneeID)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_on, id"

	return s.queryTasks(ctx, query, args...)
}

func (s *SQLStorage) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// DeleteTask removes the task with its tag links and behavior records.
func (s *SQLStorage) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.db.exec(ctx, `DELETE FROM task_properties WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("delete task %s properties: %w", id, err)
	}
	if _, err := s.db.exec(ctx, `DELETE FROM user_behaviors WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("delete task %s behaviors: %w", id, err)
	}
	n, err := s.db.exec(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if n == 0 {
		return domain.NotFound("task", id)
	}
	return nil
}

// Property Repository Implementation
func (s *SQLStorage) CreateProperty(ctx context.Context, property *domain.Property) error {
	_, err := s.db.exec(ctx, `INSERT INTO properties (id, name, creator_id) VALUES (?, ?, ?)`,
		property.ID, property.Name, property.CreatorID)
	if isUniqueViolation(err) {
		return alreadyExists("property", property.ID)
	}
	if err != nil {
		return fmt.Errorf("insert property %s: %w", property.ID, err)
	}
	return nil
}

func (s *SQLStorage) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	var p domain.Property
	err := s.db.queryRow(ctx, `SELECT id, name, creator_id FROM properties WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.CreatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("property", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get property %s: %w", id, err)
	}
	return &p, nil
}

func (s *SQLStorage) ListProperties(ctx context.Context) ([]*domain.Property, error) {
	rows, err := s.db.query(ctx, `SELECT id, name, creator_id FROM properties ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	props := make([]*domain.Property, 0)
	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatorID); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		props = append(props, &p)
	}
	return props, rows.Err()
}

func (s *SQLStorage) LinkTaskProperty(ctx context.Context, taskID, propertyID string) error {
	if err := s.requireExists(ctx, "tasks", "task", taskID); err != nil {
		return err
	}
	if err := s.requireExists(ctx, "properties", "property", propertyID); err != nil {
		return err
	}

	_, err := s.db.exec(ctx, `INSERT INTO task_properties (task_id, property_id) VALUES (?, ?)
		ON CONFLICT (task_id, property_id) DO NOTHING`, taskID, propertyID)
	if err != nil {
		return fmt.Errorf("link task %s to property %s: %w", taskID, propertyID, err)
	}
	return nil
}

func (s *SQLStorage) UnlinkTaskProperty(ctx context.Context, taskID, propertyID string) error {
	n, err := s.db.exec(ctx, `DELETE FROM task_properties WHERE task_id = ? AND property_id = ?`, taskID, propertyID)
	if err != nil {
		return fmt.Errorf("unlink task %s from property %s: %w", taskID, propertyID, err)
	}
	if n == 0 {
		return domain.NotFound("task property", taskID+"/"+propertyID)
	}
	return nil
}

func (s *SQLStorage) TaskProperties(ctx context.Context, taskID string) ([]string, error) {
	return s.queryIDs(ctx, `SELECT property_id FROM task_properties WHERE task_id = ? ORDER BY property_id`, taskID)
}

func (s *SQLStorage) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// User Repository Implementation
func (s *SQLStorage) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.exec(ctx, `INSERT INTO users (id, username, email) VALUES (?, ?, ?)`,
		user.ID, user.Username, user.Email)
	if isUniqueViolation(err) {
		return alreadyExists("user", user.Username)
	}
	if err != nil {
		return fmt.Errorf("insert user %s: %w", user.ID, err)
	}
	return nil
}

func (s *SQLStorage) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := s.db.queryRow(ctx, `SELECT id, username, email FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

func (s *SQLStorage) SaveProfile(ctx context.Context, profile domain.Profile) error {
	if err := s.requireExists(ctx, "users", "user", profile.UserID); err != nil {
		return err
	}

	_, err := s.db.exec(ctx, `INSERT INTO profiles (user_id, is_employer) VALUES (?, ?)`,
		profile.UserID, profile.IsEmployer)
	if isUniqueViolation(err) {
		return alreadyExists("profile", profile.UserID)
	}
	if err != nil {
		return fmt.Errorf("insert profile %s: %w", profile.UserID, err)
	}
	return nil
}

func (s *SQLStorage) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	p := domain.Profile{UserID: userID}
	err := s.db.queryRow(ctx, `SELECT is_employer FROM profiles WHERE user_id = ?`, userID).Scan(&p.IsEmployer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("profile", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return &p, nil
}

func (s *SQLStorage) SetUserInterest(ctx context.Context, interest domain.UserInterest) error {
	if err := s.requireExists(ctx, "users", "user", interest.UserID); err != nil {
		return err
	}
	if err := s.requireExists(ctx, "properties", "property", interest.PropertyID); err != nil {
		return err
	}

	_, err := s.db.exec(ctx, `INSERT INTO user_interests (user_id, property_id, is_interested) VALUES (?, ?, ?)
		ON CONFLICT (user_id, property_id) DO UPDATE SET is_interested = excluded.is_interested`,
		interest.UserID, interest.PropertyID, interest.Interested)
	if err != nil {
		return fmt.Errorf("set interest %s/%s: %w", interest.UserID, interest.PropertyID, err)
	}
	return nil
}

func (s *SQLStorage) ListUserInterests(ctx context.Context, userID string) ([]domain.UserInterest, error) {
	rows, err := s.db.query(ctx, `SELECT property_id, is_interested FROM user_interests
		WHERE user_id = ? ORDER BY property_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list interests of %s: %w", userID, err)
	}
	defer rows.Close()

	var out []domain.UserInterest
	for rows.Next() {
		in := domain.UserInterest{UserID: userID}
		if err := rows.Scan(&in.PropertyID, &in.Interested); err != nil {
			return nil, fmt.Errorf("scan interest: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *SQLStorage) SetUserBehavior(ctx context.Context, behavior domain.UserBehavior) error {
	if err := s.requireExists(ctx, "users", "user", behavior.UserID); err != nil {
		return err
	}
	if err := s.requireExists(ctx, "tasks", "task", behavior.TaskID); err != nil {
		return err
	}

	_, err := s.db.exec(ctx, `INSERT INTO user_behaviors (user_id, task_id, is_like) VALUES (?, ?, ?)
		ON CONFLICT (user_id, task_id) DO UPDATE SET is_like = excluded.is_like`,
		behavior.UserID, behavior.TaskID, behavior.Like)
	if err != nil {
		return fmt.Errorf("set behavior %s/%s: %w", behavior.UserID, behavior.TaskID, err)
	}
	return nil
}

func (s *SQLStorage) ListUserBehaviors(ctx context.Context, userID string) ([]domain.UserBehavior, error) {
	rows, err := s.db.query(ctx, `SELECT task_id, is_like FROM user_behaviors
		WHERE user_id = ? ORDER BY task_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list behaviors of %s: %w", userID, err)
	}
	defer rows.Close()

	var out []domain.UserBehavior
	for rows.Next() {
		b := domain.UserBehavior{UserID: userID}
		if err := rows.Scan(&b.TaskID, &b.Like); err != nil {
			return nil, fmt.Errorf("scan behavior: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Ranking store implementation
func (s *SQLStorage) ActiveTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE is_active = ? ORDER BY created_on, id`, true)
}

func (s *SQLStorage) UserInterests(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.queryIDs(ctx, `SELECT property_id FROM user_interests
		WHERE user_id = ? AND is_interested = ? ORDER BY property_id`, userID, true)
	if err != nil {
		return nil, fmt.Errorf("interests of %s: %w", userID, err)
	}
	return ids, nil
}

func (s *SQLStorage) UserCompletedTaskIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.queryIDs(ctx, `SELECT id FROM tasks
		WHERE assignee_id = ? AND status = ? ORDER BY id`, userID, string(domain.StatusDone))
	if err != nil {
		return nil, fmt.Errorf("completed tasks of %s: %w", userID, err)
	}
	return ids, nil
}

func (s *SQLStorage) UserLikedTaskIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.queryIDs(ctx, `SELECT task_id FROM user_behaviors
		WHERE user_id = ? AND is_like = ? ORDER BY task_id`, userID, true)
	if err != nil {
		return nil, fmt.Errorf("liked tasks of %s: %w", userID, err)
	}
	return ids, nil
}

func (s *SQLStorage) ResolveTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.GetTask(ctx, taskID)
}
