package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nudge-cli/nudge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Poller Tests
// =============================================================================

func TestTickNothingDue(t *testing.T) {
	f := newDeliveryFixture(t)
	require.NoError(t, f.sched.Push(notificationAt("reminder:a", base.Add(5*time.Minute))))
	p := NewPoller(f.sched, f.deliverer, 0)

	_, delivered := p.Tick(context.Background())
	assert.False(t, delivered)
	assert.Equal(t, 1, f.sched.Len())
	assert.False(t, f.presenter.touched())
}

func TestTickDeliversCurrentMinute(t *testing.T) {
	f := newDeliveryFixture(t)
	f.addDueReminder(t, newStoredReminder("reminder:a", base.Add(30*time.Second)))
	p := NewPoller(f.sched, f.deliverer, time.Second)

	// Polling anywhere inside the minute finds the alert.
	f.clock.Set(base.Add(10 * time.Second))
	outcome, delivered := p.Tick(context.Background())
	require.True(t, delivered)
	assert.Equal(t, OutcomeCleared, outcome)
	assert.Len(t, f.presenter.alerts, 1)

	_, delivered = p.Tick(context.Background())
	assert.False(t, delivered)
}

func TestTickReportsDeliveryError(t *testing.T) {
	f := newDeliveryFixture(t)
	f.player.err = errors.New("no audio device")
	f.addDueReminder(t, newStoredReminder("reminder:a", base.Add(30*time.Second)))
	p := NewPoller(f.sched, f.deliverer, time.Second)

	_, delivered := p.Tick(context.Background())
	require.True(t, delivered)
	require.Len(t, f.presenter.errors, 1)
	assert.Contains(t, f.presenter.errors[0], "no audio device")
}

func TestTickWithoutPresenter(t *testing.T) {
	s, _ := newTestScheduler(t)
	reminders := &fakeReminders{records: map[string]*model.Reminder{}}
	d := NewDeliverer(s, Collaborators{
		Reminders: reminders,
		Player:    &recordingPlayer{err: errors.New("no audio device")},
	})
	r := newStoredReminder("reminder:a", base.Add(30*time.Second))
	reminders.records[r.Key] = r
	require.NoError(t, s.Push(model.NewReminderNotification(r, 0)))
	p := NewPoller(s, d, time.Second)

	require.NotPanics(t, func() {
		_, delivered := p.Tick(context.Background())
		assert.True(t, delivered)
	})
	assert.Zero(t, s.Len())
}

func TestPollerStartStop(t *testing.T) {
	f := newDeliveryFixture(t)
	p := NewPoller(f.sched, f.deliverer, time.Hour)

	assert.False(t, p.Running())
	require.NoError(t, p.Start())
	require.NoError(t, p.Start())
	assert.True(t, p.Running())

	p.Stop()
	p.Stop()
	assert.False(t, p.Running())

	// A stopped poller can be started again.
	require.NoError(t, p.Start())
	assert.True(t, p.Running())
	p.Stop()
}

func TestPollerDeliversInBackground(t *testing.T) {
	s := NewScheduler(nil)
	presenter := &recordingPresenter{}
	reminders := &fakeReminders{records: map[string]*model.Reminder{}}
	d := NewDeliverer(s, Collaborators{Reminders: reminders, Presenter: presenter})

	now := time.Now()
	if now.Second() > 50 {
		time.Sleep(time.Until(now.Truncate(time.Minute).Add(time.Minute + time.Second)))
		now = time.Now()
	}
	r := &model.Reminder{
		Key:       "reminder:a",
		Title:     "Stretch",
		EventTime: now.Add(time.Second),
		UpdatedAt: now.Add(-time.Hour),
	}
	reminders.records[r.Key] = r
	n := model.NewReminderNotification(r, 0)
	// Pin the alert to the current minute so the first tick finds it.
	n.FireTime = now.Add(time.Nanosecond)
	require.NoError(t, s.Push(n))

	p := NewPoller(s, d, time.Second)
	require.NoError(t, p.Start())
	defer p.Stop()

	require.Eventually(t, func() bool {
		presenter.mu.Lock()
		defer presenter.mu.Unlock()
		return len(presenter.alerts) == 1
	}, 5*time.Second, 50*time.Millisecond)
}

// =============================================================================
// Responder Tests
// =============================================================================

func TestAutoResponder(t *testing.T) {
	resp := AutoResponder{}.Respond(context.Background(), model.Notification{})
	assert.Equal(t, model.ResponseAcknowledge, resp)
}

func TestQueueResponderReply(t *testing.T) {
	q := NewQueueResponder(time.Second)
	n := notificationAt("reminder:a", base)

	go func() {
		req := <-q.Requests()
		req.Reply(model.ResponseSnooze)
		// Later replies are dropped without blocking.
		req.Reply(model.ResponseView)
	}()

	assert.Equal(t, model.ResponseSnooze, q.Respond(context.Background(), n))
}

func TestQueueResponderTimeout(t *testing.T) {
	q := NewQueueResponder(20 * time.Millisecond)

	// Nobody reads the request.
	assert.Equal(t, model.ResponseAcknowledge, q.Respond(context.Background(), model.Notification{}))

	// The request is read but never answered.
	go func() { <-q.Requests() }()
	assert.Equal(t, model.ResponseAcknowledge, q.Respond(context.Background(), model.Notification{}))
}

func TestQueueResponderContextCancel(t *testing.T) {
	q := NewQueueResponder(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan model.Response, 1)
	go func() { done <- q.Respond(ctx, model.Notification{}) }()

	req := <-q.Requests()
	cancel()

	select {
	case resp := <-done:
		assert.Equal(t, model.ResponseAcknowledge, resp)
	case <-time.After(2 * time.Second):
		t.Fatal("Respond did not return after cancel")
	}
	req.Reply(model.ResponseSnooze)
}

func TestQueueResponderDefaultTimeout(t *testing.T) {
	q := NewQueueResponder(0)
	assert.Equal(t, DefaultResponseTimeout, q.timeout)
}
