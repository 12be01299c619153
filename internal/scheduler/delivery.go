package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nudge-cli/nudge/internal/logging"
	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/storage"
)

// ReminderSource looks up reminders by key.
type ReminderSource interface {
	Get(key string) (*model.Reminder, error)
}

// TaskSource looks up tasks by key.
type TaskSource interface {
	Get(key string) (*model.Task, error)
}

// PreferenceSource supplies the current preferences.
type PreferenceSource interface {
	Get() (*model.Preferences, error)
}

// Player plays a sound reference.
type Player interface {
	Play(ctx context.Context, sound string) error
}

// Presenter renders alerts and records.
type Presenter interface {
	Alert(n model.Notification)
	ShowReminder(r *model.Reminder)
	ShowTask(t *model.Task)
	Error(msg string)
}

// Responder collects the user's answer to a rendered alert.
type Responder interface {
	Respond(ctx context.Context, n model.Notification) model.Response
}

// Outcome is the terminal state of one delivery.
type Outcome int

// Delivery outcomes.
const (
	OutcomeCleared Outcome = iota
	OutcomeRecurring
	OutcomeSnoozed
	OutcomeStale
	OutcomeDeleted
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCleared:
		return "cleared"
	case OutcomeRecurring:
		return "recurring"
	case OutcomeSnoozed:
		return "snoozed"
	case OutcomeStale:
		return "stale"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Collaborators are the services a Deliverer depends on. Player,
// Presenter and Responder may be nil, in which case alerts are silent,
// unrendered and acknowledged automatically.
type Collaborators struct {
	Reminders   ReminderSource
	Tasks       TaskSource
	Preferences PreferenceSource
	Player      Player
	Presenter   Presenter
	Responder   Responder
}

// Deliverer fires due notifications.
type Deliverer struct {
	sched *Scheduler
	c     Collaborators
}

// NewDeliverer creates a delivery handler for notifications held by s.
func NewDeliverer(s *Scheduler, c Collaborators) *Deliverer {
	if c.Player == nil {
		c.Player = silentPlayer{}
	}
	if c.Presenter == nil {
		c.Presenter = hiddenPresenter{}
	}
	if c.Responder == nil {
		c.Responder = AutoResponder{}
	}
	return &Deliverer{sched: s, c: c}
}

type silentPlayer struct{}

func (silentPlayer) Play(context.Context, string) error { return nil }

type hiddenPresenter struct{}

func (hiddenPresenter) Alert(model.Notification) {}
func (hiddenPresenter) ShowReminder(*model.Reminder) {}
func (hiddenPresenter) ShowTask(*model.Task) {}
func (hiddenPresenter) Error(string) {}

// ReportError shows msg as a delivery problem on the presenter.
func (d *Deliverer) ReportError(msg string) {
	d.c.Presenter.Error(msg)
}

// Deliver fires n. Alerts for deleted or edited subjects are cleared
// without being rendered. A recurring reminder is moved to its next
// occurrence before the alert is shown. The bucket n fired from is
// always cleared. The returned error is ErrDeliveryFailure when the
// sound could not be played, or the lookup error when the record store
// failed.
func (d *Deliverer) Deliver(ctx context.Context, n model.Notification) (Outcome, error) {
	log := logging.LoggerFromContext(ctx).With(
		logging.KeySubject, n.SubjectKey,
		logging.KeyKind, n.Kind.String(),
		logging.KeyBucket, BucketOf(n.FireTime).String())

	now := d.sched.Now()
	outcome := OutcomeCleared

	var (
		reminder *model.Reminder
		task     *model.Task
		snapshot time.Time
		err      error
	)
	switch n.Kind {
	case model.KindReminder:
		reminder, err = d.c.Reminders.Get(n.SubjectKey)
		if reminder != nil {
			snapshot = reminder.UpdatedAt
		}
	case model.KindTask:
		task, err = d.c.Tasks.Get(n.SubjectKey)
		if task != nil {
			snapshot = task.UpdatedAt
		}
	default:
		err = fmt.Errorf("unknown notification kind %s", n.Kind)
	}

	if err != nil {
		d.clear(n, log)
		if storage.IsErrKeyNotFound(err) {
			log.Info("subject deleted, alert dropped", logging.KeyOutcome, OutcomeDeleted.String())
			return OutcomeDeleted, nil
		}
		log.Error("subject lookup failed", logging.KeyError, err)
		return OutcomeFailed, fmt.Errorf("look up %s: %w", n.SubjectKey, err)
	}

	if !snapshot.Equal(n.OriginSnapshot) {
		d.clear(n, log)
		log.Info("subject changed since scheduling, alert dropped", logging.KeyOutcome, OutcomeStale.String())
		return OutcomeStale, nil
	}

	if reminder != nil && reminder.IsRecurring() && !n.Snoozed {
		next := nextOccurrence(reminder, now)
		if err := d.sched.Requeue(n, next); err != nil {
			log.Warn("next occurrence not scheduled", logging.KeyFireTime, next, logging.KeyError, err)
			d.ReportError(fmt.Sprintf("next occurrence of %q not scheduled: %v", reminder.Title, err))
		} else {
			outcome = OutcomeRecurring
		}
	}

	var deliveryErr error
	if err := d.c.Player.Play(ctx, n.Sound); err != nil {
		log.Warn("sound not played", logging.KeyError, err)
		deliveryErr = fmt.Errorf("%w: %w", ErrDeliveryFailure, err)
	}

	d.c.Presenter.Alert(n)

	resp := d.c.Responder.Respond(ctx, n)
	switch resp {
	case model.ResponseSnooze:
		at := d.sched.Now().Add(d.snoozeFor(log))
		snoozed := n
		snoozed.Snoozed = true
		if err := d.sched.Requeue(snoozed, at); err != nil {
			log.Warn("snooze not scheduled", logging.KeyFireTime, at, logging.KeyError, err)
			d.ReportError(fmt.Sprintf("snooze not scheduled: %v", err))
		} else {
			outcome = OutcomeSnoozed
		}
	case model.ResponseView:
		if reminder != nil {
			d.c.Presenter.ShowReminder(reminder)
		}
		if task != nil {
			d.c.Presenter.ShowTask(task)
		}
	}

	if err := d.sched.Remove(BucketOf(n.FireTime)); err != nil && !errors.Is(err, ErrNotFound) {
		log.Warn("delivered alert not cleared", logging.KeyError, err)
	}

	log.Info("alert delivered",
		logging.KeyResponse, resp.String(),
		logging.KeyOutcome, outcome.String())
	return outcome, deliveryErr
}

// clear removes n's bucket, tolerating an already empty bucket.
func (d *Deliverer) clear(n model.Notification, log *slog.Logger) {
	if err := d.sched.Pop(n); err != nil && !errors.Is(err, ErrNotFound) {
		log.Warn("alert not cleared", logging.KeyError, err)
	}
}

func (d *Deliverer) snoozeFor(log *slog.Logger) time.Duration {
	if d.c.Preferences != nil {
		prefs, err := d.c.Preferences.Get()
		if err == nil {
			return prefs.SnoozeFor
		}
		log.Warn("preferences unavailable, using default snooze", logging.KeyError, err)
	}
	return model.DefaultPreferences().SnoozeFor
}
