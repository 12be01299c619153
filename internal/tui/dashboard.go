package tui

import (
	"bytes"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nudge-cli/nudge/internal/clock"
	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/output"
	"github.com/nudge-cli/nudge/internal/scheduler"
)

// tickMsg is sent when the clock ticks.
type tickMsg time.Time

// requestMsg carries an alert waiting for an answer.
type requestMsg scheduler.ResponseRequest

// alertMsg is sent when an alert is presented.
type alertMsg model.Notification

// detailMsg carries the rendered record behind a viewed alert.
type detailMsg string

// errMsg is sent when delivery reports a problem.
type errMsg string

// Agenda lists pending alerts in fire order.
type Agenda interface {
	Pending() []model.Notification
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	Agenda   Agenda
	Clock    clock.Clock
	Requests <-chan scheduler.ResponseRequest

	ResponseTimeout time.Duration
	RefreshInterval time.Duration
	MaxUpcoming     int
	MaxRecent       int
}

// DashboardModel is the bubbletea model for the live dashboard.
type DashboardModel struct {
	agenda   Agenda
	clock    clock.Clock
	requests <-chan scheduler.ResponseRequest

	// Data
	now     time.Time
	pending []model.Notification
	recent  []model.Notification

	// Alert waiting for an answer
	request  *scheduler.ResponseRequest
	deadline time.Time

	// UI state
	width      int
	height     int
	detail     string
	errText    string
	message    string
	messageExp time.Time

	// Configuration
	responseTimeout time.Duration
	refreshInterval time.Duration
	maxUpcoming     int
	maxRecent       int
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.ResponseTimeout <= 0 {
		config.ResponseTimeout = scheduler.DefaultResponseTimeout
	}
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = time.Second
	}
	if config.MaxUpcoming == 0 {
		config.MaxUpcoming = 8
	}
	if config.MaxRecent == 0 {
		config.MaxRecent = 5
	}

	m := &DashboardModel{
		agenda:          config.Agenda,
		clock:           config.Clock,
		requests:        config.Requests,
		responseTimeout: config.ResponseTimeout,
		refreshInterval: config.RefreshInterval,
		maxUpcoming:     config.MaxUpcoming,
		maxRecent:       config.MaxRecent,
	}
	m.loadData()
	return m
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.waitForRequest())
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.loadData()
		if !m.messageExp.IsZero() && m.now.After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		// The responder has acknowledged it by now.
		if m.request != nil && !m.now.Before(m.deadline) {
			m.request = nil
		}
		return m, m.tickCmd()

	case requestMsg:
		req := scheduler.ResponseRequest(msg)
		if m.request != nil {
			m.request.Reply(model.ResponseAcknowledge)
		}
		m.request = &req
		m.deadline = m.clock.Now().Add(m.responseTimeout)
		return m, m.waitForRequest()

	case alertMsg:
		m.recent = append([]model.Notification{model.Notification(msg)}, m.recent...)
		if len(m.recent) > m.maxRecent {
			m.recent = m.recent[:m.maxRecent]
		}
		m.loadData()
		return m, nil

	case detailMsg:
		m.detail = string(msg)
		return m, nil

	case errMsg:
		m.errText = string(msg)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" || key == "ctrl+c" {
		m.answer(model.ResponseAcknowledge)
		return m, tea.Quit
	}

	if m.request != nil {
		switch key {
		case "enter", "a":
			m.answer(model.ResponseAcknowledge)
			m.setMessage("Acknowledged", 2*time.Second)
		case "s":
			m.answer(model.ResponseSnooze)
			m.setMessage("Snoozed", 2*time.Second)
		case "v":
			m.answer(model.ResponseView)
		}
		return m, nil
	}

	switch key {
	case "r":
		m.loadData()
		m.errText = ""
		m.setMessage("Refreshed", time.Second)
	case "esc":
		m.detail = ""
	}
	return m, nil
}

// answer replies to the waiting alert, if any.
func (m *DashboardModel) answer(resp model.Response) {
	if m.request == nil {
		return
	}
	m.request.Reply(resp)
	m.request = nil
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	if m.errText != "" {
		sections = append(sections, StyleError.Render("Error: "+m.errText))
	}
	if m.message != "" {
		sections = append(sections, StyleSuccess.Render(m.message))
	}

	if m.request != nil {
		prompt := &PromptComponent{
			Alert: m.request.Notification,
			Left:  m.deadline.Sub(m.now),
			Width: m.width,
		}
		sections = append(sections, prompt.View())
	}
	if m.detail != "" {
		sections = append(sections, StyleBox.Width(m.width-4).Render(m.detail))
	}

	sections = append(sections,
		NewNextComponent(m.pending, m.now, m.width).View(),
		NewAgendaComponent(m.pending, m.now, m.width, m.maxUpcoming).View(),
		NewAlertsComponent(m.recent, m.width).View(),
		HelpBar(m.request != nil),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the dashboard header.
func (m *DashboardModel) renderHeader() string {
	title := StyleTitle.Render("nudge")
	now := StyleSubtitle.Render(m.now.Format("Mon Jan 2, 15:04:05"))
	count := StyleSubtitle.Render(fmt.Sprintf("%d pending", len(m.pending)))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", now, "  ", count) + "\n"
}

// loadData refreshes the clock and the pending list.
func (m *DashboardModel) loadData() {
	m.now = m.clock.Now()
	if m.agenda != nil {
		m.pending = m.agenda.Pending()
	}
}

// setMessage sets a temporary message.
func (m *DashboardModel) setMessage(msg string, duration time.Duration) {
	m.message = msg
	m.messageExp = m.clock.Now().Add(duration)
}

// tickCmd returns a command that sends a tick message.
func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForRequest returns a command that waits for the next alert that
// needs an answer.
func (m *DashboardModel) waitForRequest() tea.Cmd {
	if m.requests == nil {
		return nil
	}
	ch := m.requests
	return func() tea.Msg {
		req, ok := <-ch
		if !ok {
			return nil
		}
		return requestMsg(req)
	}
}

var _ scheduler.Presenter = (*Presenter)(nil)

// Presenter delivers alerts into a running dashboard.
type Presenter struct {
	send  func(tea.Msg)
	clock clock.Clock
}

// NewPresenter creates a presenter that sends through send, usually
// (*tea.Program).Send.
func NewPresenter(send func(tea.Msg), c clock.Clock) *Presenter {
	if c == nil {
		c = clock.Real()
	}
	return &Presenter{send: send, clock: c}
}

// Alert adds n to the recent alerts.
func (p *Presenter) Alert(n model.Notification) {
	p.send(alertMsg(n))
}

// ShowReminder opens the detail panel on r.
func (p *Presenter) ShowReminder(r *model.Reminder) {
	p.send(detailMsg(p.render(func(cli *output.CLIFormatter) {
		cli.PrintReminder(r, p.clock.Now())
	})))
}

// ShowTask opens the detail panel on t.
func (p *Presenter) ShowTask(t *model.Task) {
	p.send(detailMsg(p.render(func(cli *output.CLIFormatter) {
		cli.PrintTask(t, p.clock.Now())
	})))
}

// Error shows a delivery problem above the panels.
func (p *Presenter) Error(msg string) {
	p.send(errMsg(msg))
}

func (p *Presenter) render(print func(*output.CLIFormatter)) string {
	var buf bytes.Buffer
	f := output.NewFormatter()
	f.Writer = &buf
	f.ColorMode = output.ColorAlways
	print(output.NewCLIFormatter(f))
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// Run starts the dashboard on the alternate screen and returns when the
// user quits. start is called with the program before it runs, so the
// caller can wire presenters that send into it.
func Run(config DashboardConfig, start func(p *tea.Program) (stop func(), err error)) error {
	p := tea.NewProgram(NewDashboardModel(config), tea.WithAltScreen())
	stop, err := start(p)
	if err != nil {
		return err
	}
	defer stop()
	_, err = p.Run()
	return err
}
