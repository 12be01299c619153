package scheduler

import (
	"context"
	"time"

	"github.com/nudge-cli/nudge/internal/model"
)

// DefaultResponseTimeout is how long a QueueResponder waits for an answer.
const DefaultResponseTimeout = time.Minute

// AutoResponder acknowledges every alert. It serves headless runs where
// nobody is at the console.
type AutoResponder struct{}

// Respond always acknowledges.
func (AutoResponder) Respond(context.Context, model.Notification) model.Response {
	return model.ResponseAcknowledge
}

// ResponseRequest asks the foreground loop to collect an answer for a
// delivered alert.
type ResponseRequest struct {
	Notification model.Notification
	reply        chan model.Response
}

// Reply answers the request. Only the first reply counts and Reply never
// blocks, even when the requester has already given up.
func (r ResponseRequest) Reply(resp model.Response) {
	select {
	case r.reply <- resp:
	default:
	}
}

// QueueResponder hands each alert to whichever goroutine owns the
// console, so the poller never reads input itself. An alert nobody
// answers within the timeout is acknowledged.
type QueueResponder struct {
	requests chan ResponseRequest
	timeout  time.Duration
}

// NewQueueResponder creates a responder that waits up to timeout for
// each answer. A non-positive timeout uses DefaultResponseTimeout.
func NewQueueResponder(timeout time.Duration) *QueueResponder {
	if timeout <= 0 {
		timeout = DefaultResponseTimeout
	}
	return &QueueResponder{
		requests: make(chan ResponseRequest),
		timeout:  timeout,
	}
}

// Requests returns the channel the foreground loop reads alerts from.
func (q *QueueResponder) Requests() <-chan ResponseRequest {
	return q.requests
}

// Respond publishes n and waits for the answer.
func (q *QueueResponder) Respond(ctx context.Context, n model.Notification) model.Response {
	timer := time.NewTimer(q.timeout)
	defer timer.Stop()

	req := ResponseRequest{Notification: n, reply: make(chan model.Response, 1)}
	select {
	case q.requests <- req:
	case <-timer.C:
		return model.ResponseAcknowledge
	case <-ctx.Done():
		return model.ResponseAcknowledge
	}

	select {
	case resp := <-req.reply:
		return resp
	case <-timer.C:
		return model.ResponseAcknowledge
	case <-ctx.Done():
		return model.ResponseAcknowledge
	}
}
