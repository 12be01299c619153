package storage

import (
	"slices"

	"github.com/google/uuid"
	"github.com/nudge-cli/nudge/internal/model"
)

// TaskRepo provides operations for Task entities.
type TaskRepo struct {
	db *DB
}

// NewTaskRepo creates a new task repository.
func NewTaskRepo(db *DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// Create validates and stores a new task with a generated key.
func (r *TaskRepo) Create(task *model.Task) error {
	if task.Key == "" {
		task.Key = model.GenerateKey(model.PrefixTask, uuid.New().String())
	}
	now := r.db.stamp()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	if err := task.Validate(); err != nil {
		return err
	}
	return r.db.Set(task)
}

// Get retrieves a task by key.
func (r *TaskRepo) Get(key string) (*model.Task, error) {
	task := &model.Task{}
	if err := r.db.Get(key, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Resolve retrieves a task by key, id or id prefix.
func (r *TaskRepo) Resolve(ref string) (*model.Task, error) {
	return Resolve(r.db, model.PrefixTask, ref, newTask)
}

// List retrieves all tasks ordered by deadline.
func (r *TaskRepo) List() ([]*model.Task, error) {
	tasks, err := GetAllByPrefix(r.db, model.PrefixTask+":", newTask)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tasks, func(a, b *model.Task) int {
		return a.Deadline.Compare(b.Deadline)
	})
	return tasks, nil
}

// Update validates and stores an existing task, refreshing UpdatedAt.
func (r *TaskRepo) Update(task *model.Task) error {
	task.UpdatedAt = r.db.stamp()
	if err := task.Validate(); err != nil {
		return err
	}
	return r.db.Set(task)
}

// Delete removes a task by key.
func (r *TaskRepo) Delete(key string) error {
	return r.db.Delete(key)
}

func newTask() *model.Task {
	return &model.Task{}
}
