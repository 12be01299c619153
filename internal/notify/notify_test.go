package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nudge-cli/nudge/internal/config"
	"github.com/nudge-cli/nudge/internal/model"
)

var fireTime = time.Date(2030, 5, 6, 9, 15, 0, 0, time.UTC)

func reminderAlert() model.Notification {
	return model.Notification{
		Kind:       model.KindReminder,
		SubjectKey: "reminder:1",
		Title:      "Reminder",
		Subtitle:   "Standup",
		Body:       "Bring <slides> & notes",
		FireTime:   fireTime,
		Offset:     15 * time.Minute,
	}
}

func taskAlert() model.Notification {
	return model.Notification{
		Kind:       model.KindTask,
		SubjectKey: "task:1",
		Title:      "Task",
		Subtitle:   "Send invoice",
		FireTime:   fireTime,
	}
}

// fastClient retries immediately.
func fastClient() *HTTPClient {
	c := NewHTTPClient()
	c.retryDelay = []time.Duration{0, time.Millisecond, time.Millisecond}
	return c
}

// =============================================================================
// Formatter Tests
// =============================================================================

func TestGetFormatter(t *testing.T) {
	tests := []struct {
		webhookType string
		expected    string
	}{
		{config.WebhookDiscord, "*notify.DiscordFormatter"},
		{config.WebhookSlack, "*notify.SlackFormatter"},
		{config.WebhookTeams, "*notify.TeamsFormatter"},
		{config.WebhookGeneric, "*notify.GenericFormatter"},
		{"", "*notify.GenericFormatter"},
	}

	for _, tt := range tests {
		t.Run(tt.webhookType, func(t *testing.T) {
			formatter := GetFormatter(config.WebhookConfig{Type: tt.webhookType})
			require.NotNil(t, formatter)
			assert.Equal(t, tt.expected, fmt.Sprintf("%T", formatter))
			assert.Equal(t, "application/json", formatter.ContentType())
		})
	}
}

func TestAlertFields(t *testing.T) {
	fields := alertFields(reminderAlert())
	require.Len(t, fields, 2)
	assert.Equal(t, "Rings at", fields[0].Name)
	assert.Equal(t, "Before event", fields[1].Name)

	fields = alertFields(taskAlert())
	require.Len(t, fields, 1)
	assert.Equal(t, "Deadline", fields[0].Name)

	snoozed := taskAlert()
	snoozed.Snoozed = true
	fields = alertFields(snoozed)
	require.Len(t, fields, 2)
	assert.Equal(t, "Snoozed", fields[1].Name)
}

func TestHeading(t *testing.T) {
	assert.Equal(t, "Reminder: Standup", heading(reminderAlert()))
	assert.Equal(t, "Task", heading(model.Notification{Title: "Task"}))
}

func TestDiscordFormatter(t *testing.T) {
	payload, err := (&DiscordFormatter{}).Format(reminderAlert())
	require.NoError(t, err)

	var decoded discordPayload
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Len(t, decoded.Embeds, 1)

	embed := decoded.Embeds[0]
	assert.Equal(t, "Reminder: Standup", embed.Title)
	assert.Equal(t, "Bring <slides> & notes", embed.Description)
	assert.Equal(t, colorReminder, embed.Color)
	assert.Equal(t, "2030-05-06T09:15:00Z", embed.Timestamp)
	assert.Len(t, embed.Fields, 2)
}

func TestDiscordFormatterTruncatesBody(t *testing.T) {
	n := reminderAlert()
	n.Body = string(make([]byte, discordMaxDescription+100))

	payload, err := (&DiscordFormatter{}).Format(n)
	require.NoError(t, err)

	var decoded discordPayload
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Len(t, []rune(decoded.Embeds[0].Description), discordMaxDescription)
}

func TestSlackFormatter(t *testing.T) {
	payload, err := (&SlackFormatter{}).Format(taskAlert())
	require.NoError(t, err)

	var decoded slackPayload
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "Task: Send invoice", decoded.Text)
	require.NotEmpty(t, decoded.Blocks)
	assert.Equal(t, "header", decoded.Blocks[0].Type)
	require.Len(t, decoded.Attachments, 1)
	assert.Equal(t, "#E67E22", decoded.Attachments[0].Color)
}

func TestSlackFormatterEscapesBody(t *testing.T) {
	payload, err := (&SlackFormatter{}).Format(reminderAlert())
	require.NoError(t, err)

	var decoded slackPayload
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.GreaterOrEqual(t, len(decoded.Blocks), 2)
	require.NotNil(t, decoded.Blocks[1].Text)
	assert.Equal(t, "Bring &lt;slides&gt; &amp; notes", decoded.Blocks[1].Text.Text)
}

func TestTeamsFormatter(t *testing.T) {
	payload, err := (&TeamsFormatter{}).Format(reminderAlert())
	require.NoError(t, err)

	var decoded teamsPayload
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "MessageCard", decoded.Type)
	assert.Equal(t, "3498DB", decoded.ThemeColor)
	require.Len(t, decoded.Sections, 1)
	assert.Len(t, decoded.Sections[0].Facts, 2)
}

func TestGenericFormatter(t *testing.T) {
	payload, err := NewGenericFormatter("").Format(reminderAlert())
	require.NoError(t, err)

	var decoded genericPayload
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "reminder", decoded.Kind)
	assert.Equal(t, "Standup", decoded.Subtitle)
	assert.Equal(t, "2030-05-06T09:15:00Z", decoded.FireTime)
	assert.Equal(t, "15m", decoded.Fields["Before event"])
}

func TestGenericFormatterWithTemplate(t *testing.T) {
	f := NewGenericFormatter(`{"text": "{{.Kind}}: {{.Subtitle}}"}`)
	payload, err := f.Format(taskAlert())
	require.NoError(t, err)
	assert.JSONEq(t, `{"text": "task: Send invoice"}`, string(payload))
}

func TestGenericFormatterWithInvalidTemplate(t *testing.T) {
	f := NewGenericFormatter(`{{.Unclosed`)
	_, err := f.Format(taskAlert())
	assert.Error(t, err)
}

func TestSlackEscape(t *testing.T) {
	assert.Equal(t, "a &amp; b &lt;c&gt;", slackEscape("a & b <c>"))
}

func TestColorToHex(t *testing.T) {
	assert.Equal(t, "#3498DB", colorToHex(colorReminder))
	assert.Equal(t, "#000000", colorToHex(0))
}

// =============================================================================
// HTTPClient Tests
// =============================================================================

func TestHTTPClientSendSuccess(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "nudge/1.0", r.Header.Get("User-Agent"))
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	result := fastClient().Send(context.Background(), srv.URL, "application/json", []byte(`{"ok":true}`))
	require.NoError(t, result.Error)
	assert.Equal(t, http.StatusNoContent, result.StatusCode)
	assert.Equal(t, 1, result.Attempts)
	assert.JSONEq(t, `{"ok":true}`, string(got))
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := fastClient().Send(context.Background(), srv.URL, "application/json", []byte(`{}`))
	require.NoError(t, result.Error)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClientGivesUpAfterSchedule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	result := fastClient().Send(context.Background(), srv.URL, "application/json", []byte(`{}`))
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "429")
	assert.Equal(t, 3, result.Attempts)
}

func TestHTTPClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	result := fastClient().Send(context.Background(), srv.URL, "application/json", []byte(`{}`))
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "bad payload")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClientStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient()
	c.retryDelay = []time.Duration{0, time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result := c.Send(ctx, srv.URL, "application/json", []byte(`{}`))
	assert.ErrorIs(t, result.Error, context.Canceled)
}

// =============================================================================
// Dispatcher Tests
// =============================================================================

// recorder is a webhook endpoint that remembers what it received.
type recorder struct {
	mu     sync.Mutex
	bodies []string
	srv    *httptest.Server
}

func newRecorder(t *testing.T, status int) *recorder {
	t.Helper()
	rec := &recorder{}
	rec.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.bodies = append(rec.bodies, string(body))
		rec.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(rec.srv.Close)
	return rec
}

func (r *recorder) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.bodies...)
}

func newTestDispatcher(webhooks ...config.WebhookConfig) *Dispatcher {
	d := NewDispatcher(webhooks)
	d.httpClient = fastClient()
	return d
}

func TestNewDispatcherSkipsDisabled(t *testing.T) {
	d := NewDispatcher([]config.WebhookConfig{
		{Name: "a", URL: "https://example.com/a"},
		{Name: "b", URL: "https://example.com/b", Disabled: true},
	})
	assert.Equal(t, 1, d.Count())
	assert.Equal(t, "a", d.Webhooks()[0].Name)
}

func TestDispatcherSendNoWebhooks(t *testing.T) {
	d := NewDispatcher(nil)
	assert.Nil(t, d.Send(context.Background(), reminderAlert()))
}

func TestDispatcherSendAll(t *testing.T) {
	ok := newRecorder(t, http.StatusOK)
	failing := newRecorder(t, http.StatusBadRequest)

	d := newTestDispatcher(
		config.WebhookConfig{Name: "ok", Type: config.WebhookDiscord, URL: ok.srv.URL},
		config.WebhookConfig{Name: "failing", URL: failing.srv.URL},
	)

	results := d.Send(context.Background(), reminderAlert())
	require.Len(t, results, 2)

	assert.Equal(t, "ok", results[0].WebhookName)
	assert.True(t, results[0].Success)
	assert.Equal(t, http.StatusOK, results[0].StatusCode)

	assert.Equal(t, "failing", results[1].WebhookName)
	assert.False(t, results[1].Success)
	assert.Error(t, results[1].Error)

	require.Len(t, ok.received(), 1)
	assert.Contains(t, ok.received()[0], `"embeds"`)
}

func TestDispatcherSendFormatError(t *testing.T) {
	rec := newRecorder(t, http.StatusOK)
	d := newTestDispatcher(config.WebhookConfig{Name: "bad", URL: rec.srv.URL, Template: "{{.Nope"})

	results := d.Send(context.Background(), taskAlert())
	require.Len(t, results, 1)
	assert.Error(t, results[0].Error)
	assert.Empty(t, rec.received())
}

func TestDispatcherSendTo(t *testing.T) {
	rec := newRecorder(t, http.StatusOK)
	d := newTestDispatcher(config.WebhookConfig{Name: "team", URL: rec.srv.URL})

	result := d.SendTo(context.Background(), SampleNotification(fireTime), "team")
	assert.True(t, result.Success)
	require.Len(t, rec.received(), 1)
	assert.Contains(t, rec.received()[0], "nudge test")

	result = d.SendTo(context.Background(), SampleNotification(fireTime), "missing")
	assert.False(t, result.Success)
	assert.Error(t, result.Error)
}

// =============================================================================
// Forwarder Tests
// =============================================================================

type countingPresenter struct {
	alerts atomic.Int32
	errors atomic.Int32
}

func (p *countingPresenter) Alert(model.Notification) { p.alerts.Add(1) }
func (p *countingPresenter) ShowReminder(*model.Reminder) {}
func (p *countingPresenter) ShowTask(*model.Task) {}
func (p *countingPresenter) Error(string) { p.errors.Add(1) }

func TestForwarderAlertPresentsAndPosts(t *testing.T) {
	rec := newRecorder(t, http.StatusOK)
	inner := &countingPresenter{}
	fw := NewForwarder(inner, newTestDispatcher(config.WebhookConfig{Name: "team", URL: rec.srv.URL}))

	fw.Alert(reminderAlert())
	fw.Alert(taskAlert())
	fw.Close(time.Second)

	assert.Equal(t, int32(2), inner.alerts.Load())
	assert.Len(t, rec.received(), 2)
}

func TestForwarderDelegatesOtherCalls(t *testing.T) {
	rec := newRecorder(t, http.StatusOK)
	inner := &countingPresenter{}
	fw := NewForwarder(inner, newTestDispatcher(config.WebhookConfig{Name: "team", URL: rec.srv.URL}))

	fw.Error("boom")
	fw.ShowTask(&model.Task{})
	fw.Close(time.Second)

	assert.Equal(t, int32(1), inner.errors.Load())
	assert.Empty(t, rec.received())
}

func TestForwarderCloseAbandonsSlowPosts(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	fw := NewForwarder(&countingPresenter{}, newTestDispatcher(config.WebhookConfig{Name: "slow", URL: srv.URL}))
	fw.Alert(reminderAlert())

	start := time.Now()
	fw.Close(50 * time.Millisecond)
	assert.Less(t, time.Since(start), 5*time.Second)
}
