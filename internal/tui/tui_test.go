package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nudge-cli/nudge/internal/clock"
	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/scheduler"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type staticAgenda []model.Notification

func (a staticAgenda) Pending() []model.Notification { return a }

func alert(subtitle string, at time.Time) model.Notification {
	return model.Notification{
		Kind:     model.KindReminder,
		Title:    "Reminder",
		Subtitle: subtitle,
		FireTime: at,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// =============================================================================
// Countdown Tests
// =============================================================================

func TestCountdown(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"past", -time.Minute, "now"},
		{"zero", 0, "now"},
		{"seconds", 45 * time.Second, "45s"},
		{"minutes", 4*time.Minute + 12*time.Second, "4m 12s"},
		{"hours", time.Hour + 5*time.Minute + 9*time.Second, "1h 05m 09s"},
		{"days", 50 * time.Hour, "2d 2h 00m"},
		{"rounds", 59*time.Second + 600*time.Millisecond, "1m 00s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Countdown(tt.d))
		})
	}
}

func TestKindLabel(t *testing.T) {
	assert.Contains(t, KindLabel(model.KindReminder), "Reminder")
	assert.Contains(t, KindLabel(model.KindTask), "Task")
}

// =============================================================================
// Component Tests
// =============================================================================

func TestNextComponent(t *testing.T) {
	t.Run("nothing_pending", func(t *testing.T) {
		nc := NewNextComponent(nil, base, 80)
		assert.Nil(t, nc.Next)
		assert.Contains(t, nc.View(), "Nothing scheduled")
	})

	t.Run("earliest_alert", func(t *testing.T) {
		pending := []model.Notification{
			alert("Standup", base.Add(4*time.Minute)),
			alert("Lunch", base.Add(3*time.Hour)),
		}
		nc := NewNextComponent(pending, base, 80)
		require.NotNil(t, nc.Next)
		assert.Equal(t, "Standup", nc.Next.Subtitle)

		view := nc.View()
		assert.Contains(t, view, "Standup")
		assert.Contains(t, view, "4m 00s")
		assert.NotContains(t, view, "Lunch")
	})

	t.Run("snoozed", func(t *testing.T) {
		n := alert("Standup", base.Add(time.Minute))
		n.Snoozed = true
		view := NewNextComponent([]model.Notification{n}, base, 80).View()
		assert.Contains(t, view, "snoozed")
	})
}

func TestAgendaComponent(t *testing.T) {
	pending := []model.Notification{
		alert("First", base.Add(time.Minute)),
		alert("Second", base.Add(2*time.Hour)),
		alert("Third", base.Add(3*time.Hour)),
		alert("Fourth", base.Add(4*time.Hour)),
	}

	t.Run("skips_next", func(t *testing.T) {
		ac := NewAgendaComponent(pending, base, 100, 0)
		require.Len(t, ac.Pending, 3)
		assert.Equal(t, "Second", ac.Pending[0].Subtitle)

		view := ac.View()
		assert.Contains(t, view, "Upcoming")
		assert.Contains(t, view, "Fourth")
		assert.NotContains(t, view, "First")
		assert.Contains(t, view, "in 2 hours")
	})

	t.Run("limit", func(t *testing.T) {
		ac := NewAgendaComponent(pending, base, 100, 2)
		assert.Len(t, ac.Pending, 2)
		assert.NotContains(t, ac.View(), "Fourth")
	})

	t.Run("empty", func(t *testing.T) {
		ac := NewAgendaComponent(pending[:1], base, 100, 5)
		assert.Empty(t, ac.Pending)
		assert.Contains(t, ac.View(), "Nothing else pending")
	})
}

func TestAlertsComponent(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Contains(t, NewAlertsComponent(nil, 80).View(), "No alerts yet")
	})

	t.Run("with_alerts", func(t *testing.T) {
		task := model.Notification{Kind: model.KindTask, Subtitle: "Send invoice", FireTime: base}
		view := NewAlertsComponent([]model.Notification{task}, 80).View()
		assert.Contains(t, view, "Send invoice")
		assert.Contains(t, view, "09:00")
		assert.Contains(t, view, "Task")
	})
}

func TestPromptComponent(t *testing.T) {
	n := alert("Standup", base)
	n.Body = "Room 4"
	pc := &PromptComponent{Alert: n, Left: 30 * time.Second, Width: 80}

	view := pc.View()
	assert.Contains(t, view, "Standup")
	assert.Contains(t, view, "Room 4")
	assert.Contains(t, view, "30s")
}

func TestHelpBar(t *testing.T) {
	idle := HelpBar(false)
	assert.Contains(t, idle, "refresh")
	assert.Contains(t, idle, "quit")
	assert.NotContains(t, idle, "snooze")

	prompting := HelpBar(true)
	assert.Contains(t, prompting, "acknowledge")
	assert.Contains(t, prompting, "snooze")
	assert.Contains(t, prompting, "view")
}

// =============================================================================
// DashboardModel Tests
// =============================================================================

func TestNewDashboardModelDefaults(t *testing.T) {
	m := NewDashboardModel(DashboardConfig{})

	assert.Equal(t, time.Second, m.refreshInterval)
	assert.Equal(t, scheduler.DefaultResponseTimeout, m.responseTimeout)
	assert.Equal(t, 8, m.maxUpcoming)
	assert.Equal(t, 5, m.maxRecent)
	assert.Nil(t, m.waitForRequest())
}

func TestDashboardView(t *testing.T) {
	clk := clock.Fake(base)
	m := NewDashboardModel(DashboardConfig{
		Agenda: staticAgenda{alert("Standup", base.Add(10*time.Minute))},
		Clock:  clk,
	})

	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	assert.Contains(t, view, "nudge")
	assert.Contains(t, view, "1 pending")
	assert.Contains(t, view, "Standup")
	assert.Contains(t, view, "10m 00s")
}

func TestDashboardTickRefreshes(t *testing.T) {
	clk := clock.Fake(base)
	m := NewDashboardModel(DashboardConfig{
		Agenda: staticAgenda{alert("Standup", base.Add(10*time.Minute))},
		Clock:  clk,
	})
	m.setMessage("Refreshed", time.Second)

	clk.Advance(2 * time.Minute)
	_, cmd := m.Update(tickMsg(clk.Now()))

	assert.NotNil(t, cmd)
	assert.Equal(t, clk.Now(), m.now)
	assert.Empty(t, m.message)
}

func TestDashboardAlerts(t *testing.T) {
	m := NewDashboardModel(DashboardConfig{Clock: clock.Fake(base), MaxRecent: 2})

	m.Update(alertMsg(alert("One", base)))
	m.Update(alertMsg(alert("Two", base)))
	m.Update(alertMsg(alert("Three", base)))

	require.Len(t, m.recent, 2)
	assert.Equal(t, "Three", m.recent[0].Subtitle)
	assert.Equal(t, "Two", m.recent[1].Subtitle)
}

func TestDashboardDetailAndError(t *testing.T) {
	m := NewDashboardModel(DashboardConfig{Clock: clock.Fake(base)})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(detailMsg("Standup details"))
	m.Update(errMsg("reminder not found"))
	view := m.View()
	assert.Contains(t, view, "Standup details")
	assert.Contains(t, view, "reminder not found")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.detail)

	m.Update(runes("r"))
	assert.Empty(t, m.errText)
}

// request publishes n through a real responder and returns the request the
// dashboard would receive with a channel carrying the final answer.
func request(t *testing.T, n model.Notification) (scheduler.ResponseRequest, <-chan model.Response) {
	t.Helper()
	q := scheduler.NewQueueResponder(5 * time.Second)
	answers := make(chan model.Response, 1)
	go func() {
		answers <- q.Respond(context.Background(), n)
	}()

	select {
	case req := <-q.Requests():
		return req, answers
	case <-time.After(2 * time.Second):
		t.Fatal("no request published")
		return scheduler.ResponseRequest{}, nil
	}
}

func awaitAnswer(t *testing.T, answers <-chan model.Response) model.Response {
	t.Helper()
	select {
	case resp := <-answers:
		return resp
	case <-time.After(2 * time.Second):
		t.Fatal("no answer")
		return 0
	}
}

func TestDashboardResponses(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want model.Response
	}{
		{"enter_acknowledges", tea.KeyMsg{Type: tea.KeyEnter}, model.ResponseAcknowledge},
		{"a_acknowledges", runes("a"), model.ResponseAcknowledge},
		{"s_snoozes", runes("s"), model.ResponseSnooze},
		{"v_views", runes("v"), model.ResponseView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewDashboardModel(DashboardConfig{Clock: clock.Fake(base)})
			req, answers := request(t, alert("Standup", base))

			m.Update(requestMsg(req))
			require.NotNil(t, m.request)
			assert.Equal(t, base.Add(scheduler.DefaultResponseTimeout), m.deadline)

			m.Update(tt.key)
			assert.Nil(t, m.request)
			assert.Equal(t, tt.want, awaitAnswer(t, answers))
		})
	}
}

func TestDashboardPromptView(t *testing.T) {
	m := NewDashboardModel(DashboardConfig{Clock: clock.Fake(base)})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	req, answers := request(t, alert("Standup", base))

	m.Update(requestMsg(req))
	view := m.View()
	assert.Contains(t, view, "Acknowledged automatically in 1m 00s")
	assert.Contains(t, view, "snooze")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, model.ResponseAcknowledge, awaitAnswer(t, answers))
}

func TestDashboardNewRequestAcknowledgesPrevious(t *testing.T) {
	m := NewDashboardModel(DashboardConfig{Clock: clock.Fake(base)})
	first, firstAnswers := request(t, alert("First", base))
	second, secondAnswers := request(t, alert("Second", base))

	m.Update(requestMsg(first))
	m.Update(requestMsg(second))
	assert.Equal(t, model.ResponseAcknowledge, awaitAnswer(t, firstAnswers))
	assert.Equal(t, "Second", m.request.Notification.Subtitle)

	m.Update(runes("s"))
	assert.Equal(t, model.ResponseSnooze, awaitAnswer(t, secondAnswers))
}

func TestDashboardExpiredRequestIsDropped(t *testing.T) {
	clk := clock.Fake(base)
	m := NewDashboardModel(DashboardConfig{Clock: clk, ResponseTimeout: 30 * time.Second})
	req, _ := request(t, alert("Standup", base))

	m.Update(requestMsg(req))
	clk.Advance(31 * time.Second)
	m.Update(tickMsg(clk.Now()))

	assert.Nil(t, m.request)
}

func TestDashboardQuit(t *testing.T) {
	t.Run("q", func(t *testing.T) {
		m := NewDashboardModel(DashboardConfig{Clock: clock.Fake(base)})
		_, cmd := m.Update(runes("q"))
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
	})

	t.Run("acknowledges_pending", func(t *testing.T) {
		m := NewDashboardModel(DashboardConfig{Clock: clock.Fake(base)})
		req, answers := request(t, alert("Standup", base))
		m.Update(requestMsg(req))

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		assert.Equal(t, model.ResponseAcknowledge, awaitAnswer(t, answers))
	})
}

func TestWaitForRequest(t *testing.T) {
	q := scheduler.NewQueueResponder(5 * time.Second)
	m := NewDashboardModel(DashboardConfig{Clock: clock.Fake(base), Requests: q.Requests()})

	go q.Respond(context.Background(), alert("Standup", base))

	cmd := m.waitForRequest()
	require.NotNil(t, cmd)
	msg, ok := cmd().(requestMsg)
	require.True(t, ok)
	assert.Equal(t, "Standup", msg.Notification.Subtitle)
	scheduler.ResponseRequest(msg).Reply(model.ResponseAcknowledge)
}

// =============================================================================
// Presenter Tests
// =============================================================================

func TestPresenter(t *testing.T) {
	var sent []tea.Msg
	p := NewPresenter(func(msg tea.Msg) { sent = append(sent, msg) }, clock.Fake(base))

	p.Alert(alert("Standup", base))
	p.ShowReminder(&model.Reminder{Key: "0123456789abcdef", Title: "Standup", EventTime: base.Add(time.Hour)})
	p.ShowTask(&model.Task{Key: "fedcba9876543210", Description: "Send invoice", Deadline: base.Add(time.Hour)})
	p.Error("task not found")

	require.Len(t, sent, 4)
	assert.Equal(t, alertMsg(alert("Standup", base)), sent[0])

	reminder, ok := sent[1].(detailMsg)
	require.True(t, ok)
	assert.Contains(t, string(reminder), "Standup")
	assert.Contains(t, string(reminder), "Event:")

	task, ok := sent[2].(detailMsg)
	require.True(t, ok)
	assert.Contains(t, string(task), "Send invoice")
	assert.Contains(t, string(task), "Deadline:")

	assert.Equal(t, errMsg("task not found"), sent[3])
}
