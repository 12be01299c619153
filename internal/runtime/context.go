// Package runtime provides the application runtime context for nudge.
package runtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/nudge-cli/nudge/internal/clock"
	"github.com/nudge-cli/nudge/internal/config"
	nerrors "github.com/nudge-cli/nudge/internal/errors"
	"github.com/nudge-cli/nudge/internal/logging"
	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/output"
	"github.com/nudge-cli/nudge/internal/scheduler"
	"github.com/nudge-cli/nudge/internal/storage"
)

// MemoryPath selects an in-memory database when used as the storage path.
const MemoryPath = ":memory:"

// Context holds the application runtime context.
type Context struct {
	Config    *config.RuntimeConfig
	DB        *storage.DB
	Formatter *output.Formatter
	Clock     clock.Clock

	// Repositories
	Reminders   *storage.ReminderRepo
	Tasks       *storage.TaskRepo
	Notes       *storage.NoteRepo
	Preferences *storage.PreferencesRepo

	// Scheduler is set while this process hosts the schedule (shell, run).
	// Record changes are mirrored into it; one-shot commands leave it nil.
	Scheduler *scheduler.Scheduler

	// Debug mode
	Debug bool
}

// Options configures the runtime context.
type Options struct {
	Config    *config.RuntimeConfig
	DBPath    string
	InMemory  bool
	Format    output.Format
	ColorMode output.ColorMode
	Clock     clock.Clock
	Debug     bool
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		Config:    config.Global,
		DBPath:    storage.DefaultPath(),
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
	}
}

// New creates a new runtime context. A storage path in the runtime
// config overrides DBPath.
func New(opts Options) (*Context, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultRuntimeConfig()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	switch path := opts.Config.Storage.Path; path {
	case "":
	case MemoryPath:
		opts.InMemory = true
	default:
		opts.DBPath = path
	}
	if opts.DBPath == MemoryPath {
		opts.InMemory = true
	}

	db, err := storage.Open(storage.Options{
		Path:     opts.DBPath,
		InMemory: opts.InMemory,
		Clock:    opts.Clock,
	})
	if err != nil {
		return nil, err
	}

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	return &Context{
		Config:      opts.Config,
		DB:          db,
		Formatter:   formatter,
		Clock:       opts.Clock,
		Reminders:   storage.NewReminderRepo(db),
		Tasks:       storage.NewTaskRepo(db),
		Notes:       storage.NewNoteRepo(db),
		Preferences: storage.NewPreferencesRepo(db),
		Debug:       opts.Debug,
	}, nil
}

// Close closes the runtime context.
func (c *Context) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Now returns the context's current time.
func (c *Context) Now() time.Time {
	return c.Clock.Now()
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.IsJSON()
}

// Debugf prints debug output if debug mode is enabled.
func (c *Context) Debugf(format string, args ...any) {
	if c.Debug {
		c.Formatter.Printf("[DEBUG] "+format+"\n", args...)
	}
}

// Host creates a scheduler for this process and fills it from the stored
// reminders and tasks. Collisions are logged and do not fail the call.
func (c *Context) Host() (*scheduler.Scheduler, error) {
	sched := scheduler.NewScheduler(c.Clock)
	reminders, err := c.Reminders.List()
	if err != nil {
		return nil, err
	}
	tasks, err := c.Tasks.List()
	if err != nil {
		return nil, err
	}
	if _, err := sched.Rehydrate(reminders, tasks); err != nil {
		logging.Warn("some notifications were not scheduled", logging.KeyError, err)
	}
	c.Scheduler = sched
	return sched, nil
}

// Deliverer wires a delivery handler for the hosted scheduler.
func (c *Context) Deliverer(player scheduler.Player, presenter scheduler.Presenter, responder scheduler.Responder) *scheduler.Deliverer {
	return scheduler.NewDeliverer(c.Scheduler, scheduler.Collaborators{
		Reminders:   c.Reminders,
		Tasks:       c.Tasks,
		Preferences: c.Preferences,
		Player:      player,
		Presenter:   presenter,
		Responder:   responder,
	})
}

// ResolveReminder finds a reminder by key, id or id prefix.
func (c *Context) ResolveReminder(ref string) (*model.Reminder, error) {
	r, err := c.Reminders.Resolve(ref)
	return r, notFound(err, ref, nerrors.ErrReminderNotFound)
}

// ResolveTask finds a task by key, id or id prefix.
func (c *Context) ResolveTask(ref string) (*model.Task, error) {
	t, err := c.Tasks.Resolve(ref)
	return t, notFound(err, ref, nerrors.ErrTaskNotFound)
}

// ResolveNote finds a note by key, id or id prefix.
func (c *Context) ResolveNote(ref string) (*model.Note, error) {
	n, err := c.Notes.Resolve(ref)
	return n, notFound(err, ref, nerrors.ErrNoteNotFound)
}

func notFound(err error, ref string, sentinel error) error {
	if err == nil {
		return nil
	}
	if storage.IsErrKeyNotFound(err) {
		return fmt.Errorf("%w: %s", sentinel, ref)
	}
	return err
}

// CreateReminder stores r and schedules its rings.
func (c *Context) CreateReminder(r *model.Reminder) error {
	if err := c.Reminders.Create(r); err != nil {
		return err
	}
	return c.schedule(func(s *scheduler.Scheduler) error { return s.PushReminder(r) })
}

// UpdateReminder stores r, replacing the rings scheduled for old.
func (c *Context) UpdateReminder(old, r *model.Reminder) error {
	if err := c.Reminders.Update(r); err != nil {
		return err
	}
	if c.Scheduler != nil {
		c.Scheduler.PopReminder(old)
	}
	return c.schedule(func(s *scheduler.Scheduler) error { return s.PushReminder(r) })
}

// DeleteReminder removes r and its rings.
func (c *Context) DeleteReminder(r *model.Reminder) error {
	if err := c.Reminders.Delete(r.Key); err != nil {
		return err
	}
	if c.Scheduler != nil {
		c.Scheduler.PopReminder(r)
	}
	return nil
}

// CreateTask stores t and schedules its deadline.
func (c *Context) CreateTask(t *model.Task) error {
	if err := c.Tasks.Create(t); err != nil {
		return err
	}
	return c.schedule(func(s *scheduler.Scheduler) error { return s.PushTask(t) })
}

// UpdateTask stores t, replacing the deadline scheduled for old.
func (c *Context) UpdateTask(old, t *model.Task) error {
	if err := c.Tasks.Update(t); err != nil {
		return err
	}
	if c.Scheduler != nil {
		c.Scheduler.PopTask(old)
	}
	return c.schedule(func(s *scheduler.Scheduler) error { return s.PushTask(t) })
}

// DeleteTask removes t and its deadline notification.
func (c *Context) DeleteTask(t *model.Task) error {
	if err := c.Tasks.Delete(t.Key); err != nil {
		return err
	}
	if c.Scheduler != nil {
		c.Scheduler.PopTask(t)
	}
	return nil
}

// schedule runs push against the hosted scheduler. A collision leaves
// the record stored and is returned as a ScheduleConflictError.
func (c *Context) schedule(push func(*scheduler.Scheduler) error) error {
	if c.Scheduler == nil {
		return nil
	}
	if err := push(c.Scheduler); err != nil {
		if errors.Is(err, scheduler.ErrAlreadyScheduled) {
			return &ScheduleConflictError{Cause: err}
		}
		return err
	}
	return nil
}

// ScheduleConflictError reports a record that was saved but could not
// have every notification scheduled because its minute is taken.
type ScheduleConflictError struct {
	Cause error
}

func (e *ScheduleConflictError) Error() string {
	return "saved, but another notification already rings in the same minute"
}

func (e *ScheduleConflictError) Unwrap() error {
	return e.Cause
}

// RestoreOptions controls how a backup is merged into the database.
type RestoreOptions struct {
	// DryRun counts what would be restored without writing.
	DryRun bool
	// Force replaces records that already exist.
	Force bool
	// Preferences restores the backup's preferences as well.
	Preferences bool
}

// RestoreStats counts the outcome of a restore.
type RestoreStats struct {
	Reminders   int  `json:"reminders"`
	Tasks       int  `json:"tasks"`
	Notes       int  `json:"notes"`
	Preferences bool `json:"preferences"`
	Skipped     int  `json:"skipped"`
	Conflicts   int  `json:"conflicts"`
}

// Restore merges b into the database. Records whose key already exists
// are skipped unless opts.Force is set. Restored reminders and tasks are
// scheduled when this process hosts the schedule; collisions are counted
// and do not stop the restore.
func (c *Context) Restore(b *storage.Backup, opts RestoreOptions) (RestoreStats, error) {
	var stats RestoreStats
	scheduled := func(err error) error {
		var conflict *ScheduleConflictError
		if errors.As(err, &conflict) {
			stats.Conflicts++
			return nil
		}
		return err
	}

	for _, r := range b.Reminders {
		old, exists, err := lookup(r.Key, c.Reminders.Get)
		if err != nil {
			return stats, err
		}
		if exists && !opts.Force {
			stats.Skipped++
			continue
		}
		stats.Reminders++
		if opts.DryRun {
			continue
		}
		if exists {
			err = c.UpdateReminder(old, r)
		} else {
			err = c.CreateReminder(r)
		}
		if err := scheduled(err); err != nil {
			return stats, fmt.Errorf("failed to restore reminder %s: %w", r.ShortID(), err)
		}
	}

	for _, t := range b.Tasks {
		old, exists, err := lookup(t.Key, c.Tasks.Get)
		if err != nil {
			return stats, err
		}
		if exists && !opts.Force {
			stats.Skipped++
			continue
		}
		stats.Tasks++
		if opts.DryRun {
			continue
		}
		if exists {
			err = c.UpdateTask(old, t)
		} else {
			err = c.CreateTask(t)
		}
		if err := scheduled(err); err != nil {
			return stats, fmt.Errorf("failed to restore task %s: %w", t.ShortID(), err)
		}
	}

	for _, n := range b.Notes {
		_, exists, err := lookup(n.Key, c.Notes.Get)
		if err != nil {
			return stats, err
		}
		if exists && !opts.Force {
			stats.Skipped++
			continue
		}
		stats.Notes++
		if opts.DryRun {
			continue
		}
		if exists {
			err = c.Notes.Update(n)
		} else {
			err = c.Notes.Create(n)
		}
		if err != nil {
			return stats, fmt.Errorf("failed to restore note %s: %w", n.ShortID(), err)
		}
	}

	if opts.Preferences && b.Preferences != nil {
		stats.Preferences = true
		if !opts.DryRun {
			if err := c.Preferences.Set(b.Preferences); err != nil {
				return stats, err
			}
		}
	}

	logging.Info("backup restored",
		"reminders", stats.Reminders,
		"tasks", stats.Tasks,
		"notes", stats.Notes,
		"skipped", stats.Skipped,
		"dry_run", opts.DryRun)
	return stats, nil
}

// lookup fetches key with get. A record with no key, or one not stored
// yet, is reported as absent.
func lookup[T any](key string, get func(string) (T, error)) (T, bool, error) {
	var zero T
	if key == "" {
		return zero, false, nil
	}
	v, err := get(key)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return zero, false, nil
		}
		return zero, false, err
	}
	return v, true, nil
}
