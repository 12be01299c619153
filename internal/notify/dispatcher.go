package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nudge-cli/nudge/internal/config"
	"github.com/nudge-cli/nudge/internal/model"
)

// Dispatcher sends alerts to a fixed set of webhooks.
type Dispatcher struct {
	webhooks   []config.WebhookConfig
	httpClient *HTTPClient
}

// NewDispatcher creates a dispatcher for the enabled webhooks among
// webhooks.
func NewDispatcher(webhooks []config.WebhookConfig) *Dispatcher {
	var enabled []config.WebhookConfig
	for _, w := range webhooks {
		if !w.Disabled {
			enabled = append(enabled, w)
		}
	}
	return &Dispatcher{
		webhooks:   enabled,
		httpClient: NewHTTPClient(),
	}
}

// DispatchResult contains the result of dispatching to a single webhook.
type DispatchResult struct {
	WebhookName string
	Success     bool
	StatusCode  int
	Duration    time.Duration
	Error       error
}

// Count returns the number of enabled webhooks.
func (d *Dispatcher) Count() int {
	return len(d.webhooks)
}

// Webhooks returns the enabled webhooks.
func (d *Dispatcher) Webhooks() []config.WebhookConfig {
	return d.webhooks
}

// Send posts n to every webhook concurrently.
func (d *Dispatcher) Send(ctx context.Context, n model.Notification) []DispatchResult {
	if len(d.webhooks) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	results := make([]DispatchResult, len(d.webhooks))
	for i, webhook := range d.webhooks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = d.sendToWebhook(ctx, n, webhook)
		}()
	}
	wg.Wait()
	return results
}

// SendTo posts n to the webhook called name.
func (d *Dispatcher) SendTo(ctx context.Context, n model.Notification, name string) DispatchResult {
	for _, w := range d.webhooks {
		if w.Name == name {
			return d.sendToWebhook(ctx, n, w)
		}
	}
	return DispatchResult{
		WebhookName: name,
		Error:       fmt.Errorf("no enabled webhook named %q", name),
	}
}

func (d *Dispatcher) sendToWebhook(ctx context.Context, n model.Notification, webhook config.WebhookConfig) DispatchResult {
	result := DispatchResult{WebhookName: webhook.Name}

	formatter := GetFormatter(webhook)
	payload, err := formatter.Format(n)
	if err != nil {
		result.Error = fmt.Errorf("failed to format alert: %w", err)
		return result
	}

	sent := d.httpClient.Send(ctx, webhook.URL, formatter.ContentType(), payload)
	result.StatusCode = sent.StatusCode
	result.Duration = sent.Duration
	result.Error = sent.Error
	result.Success = sent.Error == nil
	return result
}

// SampleNotification builds the alert sent by 'nudge webhook test'.
func SampleNotification(now time.Time) model.Notification {
	return model.Notification{
		Kind:     model.KindReminder,
		Title:    "Reminder",
		Subtitle: "nudge test",
		Body:     "If you see this, the webhook is configured correctly.",
		FireTime: now,
	}
}
