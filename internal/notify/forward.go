package notify

import (
	"context"
	"sync"
	"time"

	"github.com/nudge-cli/nudge/internal/logging"
	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/scheduler"
)

var _ scheduler.Presenter = (*Forwarder)(nil)

// Forwarder presents alerts through another presenter and also posts
// each one to the dispatcher's webhooks. Posting runs in the background
// so a slow endpoint never delays the alert on screen.
type Forwarder struct {
	scheduler.Presenter
	dispatcher *Dispatcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewForwarder wraps inner.
func NewForwarder(inner scheduler.Presenter, d *Dispatcher) *Forwarder {
	ctx, cancel := context.WithCancel(context.Background())
	return &Forwarder{
		Presenter:  inner,
		dispatcher: d,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Alert presents n and posts it to every webhook.
func (f *Forwarder) Alert(n model.Notification) {
	f.Presenter.Alert(n)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for _, r := range f.dispatcher.Send(f.ctx, n) {
			if r.Error != nil {
				logging.Warn("webhook delivery failed",
					"webhook", r.WebhookName,
					logging.KeySubject, n.SubjectKey,
					logging.KeyError, r.Error)
				continue
			}
			logging.DebugLog("webhook delivered",
				"webhook", r.WebhookName,
				"status", r.StatusCode,
				"duration", r.Duration)
		}
	}()
}

// Close waits up to timeout for posts in flight, then abandons them.
func (f *Forwarder) Close(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		f.cancel()
		<-done
	}
	f.cancel()
}
