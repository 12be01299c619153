package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalHandler turns SIGINT, SIGTERM and SIGHUP into a shutdown request.
type SignalHandler struct {
	signals chan os.Signal
}

// NewSignalHandler creates a handler and starts listening.
func NewSignalHandler() *SignalHandler {
	h := &SignalHandler{signals: make(chan os.Signal, 1)}
	signal.Notify(h.signals,
		syscall.SIGINT,  // Ctrl+C
		syscall.SIGTERM, // Termination request
		syscall.SIGHUP,  // Terminal hangup
	)
	return h
}

// C delivers the received shutdown signals.
func (h *SignalHandler) C() <-chan os.Signal {
	return h.signals
}

// Wait blocks until a shutdown signal arrives or ctx is done. It returns
// nil in the latter case.
func (h *SignalHandler) Wait(ctx context.Context) os.Signal {
	select {
	case sig := <-h.signals:
		return sig
	case <-ctx.Done():
		return nil
	}
}

// Stop stops listening and restores default signal behaviour.
func (h *SignalHandler) Stop() {
	signal.Stop(h.signals)
}
