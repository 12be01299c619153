package storage

import (
	"slices"

	"github.com/google/uuid"
	"github.com/nudge-cli/nudge/internal/model"
)

// ReminderRepo provides operations for Reminder entities.
type ReminderRepo struct {
	db *DB
}

// NewReminderRepo creates a new reminder repository.
func NewReminderRepo(db *DB) *ReminderRepo {
	return &ReminderRepo{db: db}
}

// Create validates and stores a new reminder with a generated key.
func (r *ReminderRepo) Create(reminder *model.Reminder) error {
	if reminder.Key == "" {
		reminder.Key = model.GenerateKey(model.PrefixReminder, uuid.New().String())
	}
	now := r.db.stamp()
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = now
	}
	reminder.UpdatedAt = now
	if err := reminder.Validate(); err != nil {
		return err
	}
	return r.db.Set(reminder)
}

// Get retrieves a reminder by key.
func (r *ReminderRepo) Get(key string) (*model.Reminder, error) {
	reminder := &model.Reminder{}
	if err := r.db.Get(key, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// Resolve retrieves a reminder by key, id or id prefix.
func (r *ReminderRepo) Resolve(ref string) (*model.Reminder, error) {
	return Resolve(r.db, model.PrefixReminder, ref, newReminder)
}

// List retrieves all reminders ordered by event time.
func (r *ReminderRepo) List() ([]*model.Reminder, error) {
	reminders, err := GetAllByPrefix(r.db, model.PrefixReminder+":", newReminder)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(reminders, func(a, b *model.Reminder) int {
		return a.EventTime.Compare(b.EventTime)
	})
	return reminders, nil
}

// Update validates and stores an existing reminder, refreshing UpdatedAt.
func (r *ReminderRepo) Update(reminder *model.Reminder) error {
	reminder.UpdatedAt = r.db.stamp()
	if err := reminder.Validate(); err != nil {
		return err
	}
	return r.db.Set(reminder)
}

// Delete removes a reminder by key.
func (r *ReminderRepo) Delete(key string) error {
	return r.db.Delete(key)
}

func newReminder() *model.Reminder {
	return &model.Reminder{}
}
