package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nudge-cli/nudge/internal/logging"
)

// DefaultPollInterval is how often the poller checks the current minute.
const DefaultPollInterval = time.Second

// Poller checks the scheduler's current-minute bucket on a fixed interval
// and delivers what it finds. Deliveries run one at a time on the cron
// goroutine; a tick that arrives while a delivery is still waiting for
// its response is skipped.
type Poller struct {
	sched     *Scheduler
	deliverer *Deliverer
	interval  time.Duration

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
	cancel  context.CancelFunc
}

// NewPoller creates a poller for s. A non-positive interval uses
// DefaultPollInterval.
func NewPoller(s *Scheduler, d *Deliverer, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		sched:     s,
		deliverer: d,
		interval:  interval,
	}
}

// Start begins polling. Calling Start on a running poller does nothing.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := c.AddFunc(fmt.Sprintf("@every %s", p.interval), func() {
		p.Tick(ctx)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to add poll job: %w", err)
	}

	c.Start()
	p.cron = c
	p.cancel = cancel
	p.running = true

	logging.DebugLog("poller started", "interval", p.interval.String())
	return nil
}

// Stop halts polling and waits for an in-flight delivery to finish. A
// delivery waiting for a response is told to give up.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.cancel()
	<-p.cron.Stop().Done()
	p.running = false
	logging.DebugLog("poller stopped")
}

// Running reports whether the poller has been started and not stopped.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Tick runs one poll: if the current minute holds a notification it is
// delivered synchronously. It reports whether anything was delivered.
func (p *Poller) Tick(ctx context.Context) (Outcome, bool) {
	n, ok := p.sched.Due(p.sched.Now())
	if !ok {
		return 0, false
	}

	ctx = logging.WithDeliveryID(ctx, logging.GenerateDeliveryID())
	outcome, err := p.deliverer.Deliver(ctx, n)
	if err != nil {
		logging.LoggerFromContext(ctx).Error("delivery failed",
			logging.KeySubject, n.SubjectKey,
			logging.KeyOutcome, outcome.String(),
			logging.KeyError, err)
		p.deliverer.ReportError(err.Error())
	}
	return outcome, true
}

// cronLogger routes cron's internal logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logging.DebugLog("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logging.Error("cron: "+msg, append(keysAndValues, logging.KeyError, err)...)
}
