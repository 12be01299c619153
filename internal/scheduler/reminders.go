package scheduler

import (
	"errors"
	"time"

	"github.com/nudge-cli/nudge/internal/logging"
	"github.com/nudge-cli/nudge/internal/model"
)

// ReminderNotifications returns one notification per ring offset of r
// plus one at the event time itself.
func ReminderNotifications(r *model.Reminder) []model.Notification {
	out := make([]model.Notification, 0, len(r.RingOffsets)+1)
	for _, off := range r.RingOffsets {
		out = append(out, model.NewReminderNotification(r, off))
	}
	return append(out, model.NewReminderNotification(r, 0))
}

// PushReminder schedules every ring of r. Each ring is pushed on its
// own; a collision is logged and reported in the joined error while the
// remaining rings are still scheduled. A recurring reminder whose event
// time has passed is armed for its next occurrence after now.
func (s *Scheduler) PushReminder(r *model.Reminder) error {
	r = armed(r, s.Now())

	var errs []error
	for _, n := range ReminderNotifications(r) {
		if err := s.Push(n); err != nil {
			logging.Warn("reminder ring not scheduled",
				logging.KeySubject, r.Key,
				logging.KeyFireTime, n.FireTime,
				logging.KeyError, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PopReminder removes every ring of r. Rings that are no longer
// scheduled, typically because they already fired, are skipped, as are
// minutes held by another subject. Copies moved by recurrence or
// snoozing are cleared too.
func (s *Scheduler) PopReminder(r *model.Reminder) {
	for _, n := range ReminderNotifications(r) {
		if err := s.PopOwned(n); err != nil {
			logging.Warn("reminder ring not scheduled",
				logging.KeySubject, r.Key,
				logging.KeyFireTime, n.FireTime,
				logging.KeyError, err)
		}
	}
	if moved := s.RemoveSubject(model.KindReminder, r.Key); moved > 0 {
		logging.DebugLog("moved reminder rings cleared",
			logging.KeySubject, r.Key,
			logging.KeyCount, moved)
	}
}

// PushTask schedules the single deadline notification of t.
func (s *Scheduler) PushTask(t *model.Task) error {
	n := model.NewTaskNotification(t)
	if err := s.Push(n); err != nil {
		logging.Warn("task deadline not scheduled",
			logging.KeySubject, t.Key,
			logging.KeyFireTime, n.FireTime,
			logging.KeyError, err)
		return err
	}
	return nil
}

// PopTask removes the deadline notification of t. A missing entry, or a
// minute held by another subject, is logged and otherwise ignored. A
// snoozed copy is cleared too.
func (s *Scheduler) PopTask(t *model.Task) {
	if err := s.PopOwned(model.NewTaskNotification(t)); err != nil {
		logging.Warn("task deadline not scheduled",
			logging.KeySubject, t.Key,
			logging.KeyError, err)
	}
	if moved := s.RemoveSubject(model.KindTask, t.Key); moved > 0 {
		logging.DebugLog("snoozed task alerts cleared",
			logging.KeySubject, t.Key,
			logging.KeyCount, moved)
	}
}

// Rehydrate rebuilds the schedule from stored records, for example at
// process start. A recurring reminder whose event time has passed is
// armed for its next occurrence after now. It returns the number of
// notifications admitted and the joined collision errors.
func (s *Scheduler) Rehydrate(reminders []*model.Reminder, tasks []*model.Task) (int, error) {
	before := s.Len()

	var errs []error
	for _, r := range reminders {
		if err := s.PushReminder(r); err != nil {
			errs = append(errs, err)
		}
	}
	for _, t := range tasks {
		if err := s.PushTask(t); err != nil {
			errs = append(errs, err)
		}
	}

	added := s.Len() - before
	logging.Info("schedule rehydrated",
		logging.KeyCount, added,
		"reminders", len(reminders),
		"tasks", len(tasks))
	return added, errors.Join(errs...)
}

// armed returns r, or a copy of it moved to its next occurrence after
// now when r recurs and its event time has passed.
func armed(r *model.Reminder, now time.Time) *model.Reminder {
	if !r.IsRecurring() || r.EventTime.After(now) {
		return r
	}
	next := *r
	next.EventTime = r.Repeat.NextAfter(r.EventTime, now)
	return &next
}

// nextOccurrence is where a recurring reminder's alert moves after it
// fires. The pattern is applied to now rather than to the scheduled
// fire time, so a late delivery shifts later occurrences.
func nextOccurrence(r *model.Reminder, now time.Time) time.Time {
	return r.Repeat.Next(now)
}
