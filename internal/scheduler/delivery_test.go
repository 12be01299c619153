package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nudge-cli/nudge/internal/clock"
	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test doubles
// =============================================================================

type fakeReminders struct {
	records map[string]*model.Reminder
	err     error
}

func (f *fakeReminders) Get(key string) (*model.Reminder, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.records[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return r, nil
}

type fakeTasks struct {
	records map[string]*model.Task
}

func (f *fakeTasks) Get(key string) (*model.Task, error) {
	t, ok := f.records[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return t, nil
}

type fakePrefs struct {
	prefs *model.Preferences
	err   error
}

func (f *fakePrefs) Get() (*model.Preferences, error) {
	return f.prefs, f.err
}

type recordingPlayer struct {
	mu     sync.Mutex
	played []string
	err    error
}

func (p *recordingPlayer) Play(_ context.Context, sound string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, sound)
	return p.err
}

func (p *recordingPlayer) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.played)
}

type recordingPresenter struct {
	mu        sync.Mutex
	alerts    []model.Notification
	reminders []*model.Reminder
	tasks     []*model.Task
	errors    []string
}

func (p *recordingPresenter) Alert(n model.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, n)
}

func (p *recordingPresenter) ShowReminder(r *model.Reminder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reminders = append(p.reminders, r)
}

func (p *recordingPresenter) ShowTask(t *model.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, t)
}

func (p *recordingPresenter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, msg)
}

func (p *recordingPresenter) touched() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.alerts)+len(p.reminders)+len(p.tasks)+len(p.errors) > 0
}

type scriptedResponder struct {
	resp  model.Response
	calls int
}

func (r *scriptedResponder) Respond(context.Context, model.Notification) model.Response {
	r.calls++
	return r.resp
}

type deliveryFixture struct {
	sched     *Scheduler
	clock     *clock.FakeClock
	deliverer *Deliverer
	reminders *fakeReminders
	tasks     *fakeTasks
	player    *recordingPlayer
	presenter *recordingPresenter
	responder *scriptedResponder
}

func newDeliveryFixture(t *testing.T) *deliveryFixture {
	t.Helper()
	s, fc := newTestScheduler(t)
	f := &deliveryFixture{
		sched:     s,
		clock:     fc,
		reminders: &fakeReminders{records: map[string]*model.Reminder{}},
		tasks:     &fakeTasks{records: map[string]*model.Task{}},
		player:    &recordingPlayer{},
		presenter: &recordingPresenter{},
		responder: &scriptedResponder{resp: model.ResponseAcknowledge},
	}
	f.deliverer = NewDeliverer(s, Collaborators{
		Reminders:   f.reminders,
		Tasks:       f.tasks,
		Preferences: &fakePrefs{prefs: model.DefaultPreferences()},
		Player:      f.player,
		Presenter:   f.presenter,
		Responder:   f.responder,
	})
	return f
}

// addDueReminder stores r and schedules its event ring at the scheduler's
// current minute, returning that notification.
func (f *deliveryFixture) addDueReminder(t *testing.T, r *model.Reminder) model.Notification {
	t.Helper()
	f.reminders.records[r.Key] = r
	n := model.NewReminderNotification(r, 0)
	n.FireTime = base.Add(30 * time.Second)
	require.NoError(t, f.sched.Push(n))
	return n
}

// =============================================================================
// Deliver Tests
// =============================================================================

func TestDeliverAcknowledgeClears(t *testing.T) {
	f := newDeliveryFixture(t)
	r := newStoredReminder("reminder:a", base.Add(30*time.Second))
	r.Sound = "ding.wav"
	n := f.addDueReminder(t, r)

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, outcome)

	assert.Equal(t, 0, f.sched.Len())
	assert.Equal(t, []string{"ding.wav"}, f.player.played)
	require.Len(t, f.presenter.alerts, 1)
	assert.Equal(t, "Standup", f.presenter.alerts[0].Subtitle)
	assert.Equal(t, 1, f.responder.calls)
}

func TestDeliverDeletedSubject(t *testing.T) {
	f := newDeliveryFixture(t)
	n := f.addDueReminder(t, newStoredReminder("reminder:a", base.Add(30*time.Second)))
	delete(f.reminders.records, "reminder:a")

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)

	assert.Equal(t, 0, f.sched.Len())
	assert.Equal(t, 0, f.player.calls())
	assert.False(t, f.presenter.touched())
	assert.Equal(t, 0, f.responder.calls)
}

func TestDeliverStaleSubject(t *testing.T) {
	f := newDeliveryFixture(t)
	r := newStoredReminder("reminder:a", base.Add(30*time.Second))
	n := f.addDueReminder(t, r)

	// The record was edited after the alert was scheduled.
	edited := *r
	edited.UpdatedAt = base.Add(-time.Minute)
	f.reminders.records[r.Key] = &edited

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStale, outcome)

	assert.Equal(t, 0, f.sched.Len())
	assert.Equal(t, 0, f.player.calls())
	assert.False(t, f.presenter.touched())
}

func TestDeliverSnapshotComparesInstants(t *testing.T) {
	f := newDeliveryFixture(t)
	r := newStoredReminder("reminder:a", base.Add(30*time.Second))
	n := f.addDueReminder(t, r)

	// Same instant in another location is not stale.
	moved := *r
	moved.UpdatedAt = r.UpdatedAt.In(time.FixedZone("X", 3600))
	f.reminders.records[r.Key] = &moved

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, outcome)
	assert.Len(t, f.presenter.alerts, 1)
}

func TestDeliverWeeklyRecurrence(t *testing.T) {
	f := newDeliveryFixture(t)
	r := newStoredReminder("reminder:a", base.Add(30*time.Second))
	r.Repeat = model.Repeat{Kind: model.RepeatWeekly}
	n := f.addDueReminder(t, r)

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRecurring, outcome)

	require.Equal(t, 1, f.sched.Len())
	next, ok := f.sched.Lookup(BucketOf(base.Add(7 * 24 * time.Hour)))
	require.True(t, ok)
	assert.Equal(t, "reminder:a", next.SubjectKey)
	assert.Equal(t, n.OriginSnapshot, next.OriginSnapshot)
	_, ok = f.sched.Lookup(BucketOf(n.FireTime))
	assert.False(t, ok)
}

func TestDeliverRecurrenceAnchoredToNow(t *testing.T) {
	f := newDeliveryFixture(t)
	r := newStoredReminder("reminder:a", base.Add(30*time.Second))
	r.Repeat = model.Repeat{Kind: model.RepeatDaily}
	n := f.addDueReminder(t, r)

	// Delivered 40 seconds into the minute; the next day's alert keeps that drift.
	f.clock.Advance(40 * time.Second)

	_, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)

	pending := f.sched.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, base.Add(24*time.Hour+40*time.Second), pending[0].FireTime)
}

func TestDeliverMinuteRecurrence(t *testing.T) {
	f := newDeliveryFixture(t)
	r := newStoredReminder("reminder:a", base.Add(30*time.Second))
	r.Repeat = model.Repeat{Kind: model.RepeatMinute}
	n := f.addDueReminder(t, r)

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRecurring, outcome)

	_, ok := f.sched.Lookup(BucketOf(base.Add(time.Minute)))
	assert.True(t, ok)
	assert.Equal(t, 1, f.sched.Len())
}

func TestDeliverRecurrenceCollisionReported(t *testing.T) {
	f := newDeliveryFixture(t)
	r := newStoredReminder("reminder:a", base.Add(30*time.Second))
	r.Repeat = model.Repeat{Kind: model.RepeatWeekly}
	n := f.addDueReminder(t, r)
	require.NoError(t, f.sched.Push(notificationAt("reminder:other", base.Add(7*24*time.Hour+10*time.Second))))

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, outcome)

	assert.Len(t, f.presenter.alerts, 1)
	assert.Len(t, f.presenter.errors, 1)
	// Only the blocking notification remains.
	assert.Equal(t, 1, f.sched.Len())
}

func TestDeliverSnooze(t *testing.T) {
	f := newDeliveryFixture(t)
	f.responder.resp = model.ResponseSnooze
	n := f.addDueReminder(t, newStoredReminder("reminder:a", base.Add(30*time.Second)))

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSnoozed, outcome)

	require.Equal(t, 1, f.sched.Len())
	snoozed, ok := f.sched.Lookup(BucketOf(base.Add(10 * time.Minute)))
	require.True(t, ok)
	assert.True(t, snoozed.Snoozed)
	_, ok = f.sched.Lookup(BucketOf(n.FireTime))
	assert.False(t, ok)
}

func TestDeliverSnoozeUsesPreferences(t *testing.T) {
	f := newDeliveryFixture(t)
	prefs := model.DefaultPreferences()
	prefs.SnoozeFor = 3 * time.Minute
	f.deliverer.c.Preferences = &fakePrefs{prefs: prefs}
	f.responder.resp = model.ResponseSnooze
	n := f.addDueReminder(t, newStoredReminder("reminder:a", base.Add(30*time.Second)))

	_, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)

	_, ok := f.sched.Lookup(BucketOf(base.Add(3 * time.Minute)))
	assert.True(t, ok)
}

func TestDeliverSnoozePreferencesUnavailable(t *testing.T) {
	f := newDeliveryFixture(t)
	f.deliverer.c.Preferences = &fakePrefs{err: errors.New("db closed")}
	f.responder.resp = model.ResponseSnooze
	n := f.addDueReminder(t, newStoredReminder("reminder:a", base.Add(30*time.Second)))

	_, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)

	_, ok := f.sched.Lookup(BucketOf(base.Add(10 * time.Minute)))
	assert.True(t, ok)
}

func TestDeliverSnoozeOfRecurringKeepsOneChain(t *testing.T) {
	f := newDeliveryFixture(t)
	f.responder.resp = model.ResponseSnooze
	r := newStoredReminder("reminder:a", base.Add(30*time.Second))
	r.Repeat = model.Repeat{Kind: model.RepeatWeekly}
	n := f.addDueReminder(t, r)

	_, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	require.Equal(t, 2, f.sched.Len())

	// The snoozed copy fires and is acknowledged without starting a second weekly chain.
	snoozed, ok := f.sched.Lookup(BucketOf(base.Add(10 * time.Minute)))
	require.True(t, ok)
	f.responder.resp = model.ResponseAcknowledge
	f.clock.Set(base.Add(10 * time.Minute))

	outcome, err := f.deliverer.Deliver(context.Background(), snoozed)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, outcome)

	pending := f.sched.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, BucketOf(base.Add(7*24*time.Hour)), BucketOf(pending[0].FireTime))
}

func TestDeliverView(t *testing.T) {
	f := newDeliveryFixture(t)
	f.responder.resp = model.ResponseView
	n := f.addDueReminder(t, newStoredReminder("reminder:a", base.Add(30*time.Second)))

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, outcome)

	require.Len(t, f.presenter.reminders, 1)
	assert.Equal(t, "reminder:a", f.presenter.reminders[0].Key)
	assert.Equal(t, 0, f.sched.Len())
}

func TestDeliverTask(t *testing.T) {
	f := newDeliveryFixture(t)
	f.responder.resp = model.ResponseView
	task := &model.Task{
		Key:         "task:a",
		Description: "File taxes",
		Deadline:    base.Add(20 * time.Second),
		UpdatedAt:   base.Add(-time.Hour),
	}
	f.tasks.records[task.Key] = task
	n := model.NewTaskNotification(task)
	require.NoError(t, f.sched.Push(n))

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, outcome)
	require.Len(t, f.presenter.tasks, 1)
	assert.Equal(t, 0, f.sched.Len())
}

func TestDeliverDeletedTask(t *testing.T) {
	f := newDeliveryFixture(t)
	task := &model.Task{Key: "task:gone", Description: "x", Deadline: base.Add(20 * time.Second)}
	n := model.NewTaskNotification(task)
	require.NoError(t, f.sched.Push(n))

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)
	assert.False(t, f.presenter.touched())
	assert.Equal(t, 0, f.sched.Len())
}

func TestDeliverSoundFailure(t *testing.T) {
	f := newDeliveryFixture(t)
	f.player.err = errors.New("no audio device")
	f.responder.resp = model.ResponseSnooze
	n := f.addDueReminder(t, newStoredReminder("reminder:a", base.Add(30*time.Second)))

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeliveryFailure)
	assert.Contains(t, err.Error(), "no audio device")

	// Rendering and rescheduling still happen.
	assert.Equal(t, OutcomeSnoozed, outcome)
	assert.Len(t, f.presenter.alerts, 1)
	assert.Equal(t, 1, f.sched.Len())
}

func TestDeliverLookupFailure(t *testing.T) {
	f := newDeliveryFixture(t)
	n := f.addDueReminder(t, newStoredReminder("reminder:a", base.Add(30*time.Second)))
	f.reminders.err = errors.New("badger: closed")

	outcome, err := f.deliverer.Deliver(context.Background(), n)
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Contains(t, err.Error(), "badger: closed")
	assert.Equal(t, 0, f.sched.Len())
	assert.False(t, f.presenter.touched())
}

func TestDeliverDefaultsCollaborators(t *testing.T) {
	s, _ := newTestScheduler(t)
	presenter := &recordingPresenter{}
	reminders := &fakeReminders{records: map[string]*model.Reminder{}}
	d := NewDeliverer(s, Collaborators{Reminders: reminders, Presenter: presenter})

	r := newStoredReminder("reminder:a", base.Add(30*time.Second))
	reminders.records[r.Key] = r
	n := model.NewReminderNotification(r, 0)
	require.NoError(t, s.Push(n))

	outcome, err := d.Deliver(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, outcome)
	assert.Len(t, presenter.alerts, 1)
}

func TestDeliverWithoutPresenter(t *testing.T) {
	s, _ := newTestScheduler(t)
	reminders := &fakeReminders{records: map[string]*model.Reminder{}}
	d := NewDeliverer(s, Collaborators{
		Reminders: reminders,
		Player:    &recordingPlayer{err: errors.New("no audio device")},
		Responder: &scriptedResponder{resp: model.ResponseView},
	})

	r := newStoredReminder("reminder:a", base.Add(30*time.Second))
	reminders.records[r.Key] = r
	n := model.NewReminderNotification(r, 0)
	require.NoError(t, s.Push(n))

	var (
		outcome Outcome
		err     error
	)
	require.NotPanics(t, func() {
		outcome, err = d.Deliver(context.Background(), n)
		d.ReportError("ignored")
	})
	assert.ErrorIs(t, err, ErrDeliveryFailure)
	assert.Equal(t, OutcomeCleared, outcome)
	assert.Zero(t, s.Len())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "cleared", OutcomeCleared.String())
	assert.Equal(t, "recurring", OutcomeRecurring.String())
	assert.Equal(t, "snoozed", OutcomeSnoozed.String())
	assert.Equal(t, "stale", OutcomeStale.String())
	assert.Equal(t, "deleted", OutcomeDeleted.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
}
