package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nudge-cli/nudge/internal/errors"
	"github.com/nudge-cli/nudge/internal/logging"
)

// Service is the work a runner keeps alive, normally the poller.
type Service interface {
	Start() error
	Stop()
}

// Snapshot describes the schedule held by a running process.
type Snapshot struct {
	Pending  int       `json:"pending"`
	NextFire time.Time `json:"next_fire,omitempty"`
}

// State is written next to the PID file so other invocations can report
// on the runner without opening its database.
type State struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Snapshot
}

// Status represents the runner status.
type Status struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Pending   int       `json:"pending"`
	NextFire  time.Time `json:"next_fire,omitempty"`
	PIDFile   string    `json:"pid_file"`
}

// Options configures a Runner. Empty paths use the XDG state directory.
type Options struct {
	PIDPath       string
	StatePath     string
	KillTimeout   time.Duration
	StateInterval time.Duration
}

// Runner manages the background process.
type Runner struct {
	pidFile       *PIDFile
	statePath     string
	killTimeout   time.Duration
	stateInterval time.Duration
}

// NewRunner creates a runner manager.
func NewRunner(opts Options) *Runner {
	if opts.StatePath == "" {
		opts.StatePath = filepath.Join(xdg.StateHome, AppName, "state.json")
	}
	if opts.KillTimeout <= 0 {
		opts.KillTimeout = 5 * time.Second
	}
	if opts.StateInterval <= 0 {
		opts.StateInterval = 15 * time.Second
	}
	return &Runner{
		pidFile:       NewPIDFile(opts.PIDPath),
		statePath:     opts.StatePath,
		killTimeout:   opts.KillTimeout,
		stateInterval: opts.StateInterval,
	}
}

// IsRunning returns true if a runner process is alive.
func (r *Runner) IsRunning() bool {
	return r.pidFile.IsRunning()
}

// Run starts svc in this process and blocks until a shutdown signal
// arrives or ctx is done. snapshot is polled to keep the state file
// current and may be nil.
func (r *Runner) Run(ctx context.Context, svc Service, snapshot func() Snapshot) error {
	if pid := r.pidFile.RunningPID(); pid != 0 && pid != os.Getpid() {
		return fmt.Errorf("%w (pid %d)", errors.ErrDaemonRunning, pid)
	}

	if err := r.pidFile.Write(); err != nil {
		return err
	}
	defer r.cleanup()

	state := &State{PID: os.Getpid(), StartedAt: time.Now()}
	r.refresh(state, snapshot)

	if err := svc.Start(); err != nil {
		return err
	}
	defer svc.Stop()

	signals := NewSignalHandler()
	defer signals.Stop()

	logging.Info("runner started", logging.KeyPID, state.PID, "pid_file", r.pidFile.Path())

	ticker := time.NewTicker(r.stateInterval)
	defer ticker.Stop()
	for {
		select {
		case sig := <-signals.C():
			logging.Info("received signal", "signal", sig.String())
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.refresh(state, snapshot)
		}
	}
}

func (r *Runner) refresh(state *State, snapshot func() Snapshot) {
	if snapshot != nil {
		state.Snapshot = snapshot()
	}
	state.UpdatedAt = time.Now()
	if err := r.writeState(state); err != nil {
		logging.Warn("failed to write runner state", logging.KeyError, err, "path", r.statePath)
	}
}

func (r *Runner) cleanup() {
	if err := r.pidFile.Remove(); err != nil {
		logging.Warn("failed to remove PID file", logging.KeyError, err)
	}
	r.removeState()
	logging.Info("runner stopped")
}

// StartBackground re-executes the current binary with args, detached
// from the terminal, and waits for it to record its PID.
func (r *Runner) StartBackground(args []string, logPath string) (int, error) {
	if pid := r.pidFile.RunningPID(); pid != 0 {
		return pid, errors.ErrDaemonRunning
	}

	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, args...)
	cmd.Stdin = nil
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err == nil {
		if logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			defer logFile.Close()
			cmd.Stdout = logFile
			cmd.Stderr = logFile
		}
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start runner: %w", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pid := r.pidFile.RunningPID(); pid == cmd.Process.Pid {
			_ = cmd.Process.Release()
			return pid, nil
		}
		time.Sleep(50 * time.Millisecond)
	}

	if msg := lastLogError(logPath); msg != "" {
		return 0, fmt.Errorf("runner failed to start: %s", msg)
	}
	return 0, fmt.Errorf("runner failed to start (check logs: %s)", logPath)
}

// lastLogError returns the most recent error line among the last lines
// of the log file.
func lastLogError(logPath string) string {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for i := len(lines) - 1; i >= 0 && i >= len(lines)-10; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.Contains(line, "ERROR") || strings.Contains(strings.ToLower(line), "level=error") {
			return line
		}
	}
	return ""
}

// Stop asks the running process to exit and waits up to the kill
// timeout before killing it.
func (r *Runner) Stop() error {
	pid := r.pidFile.RunningPID()
	if pid == 0 {
		return errors.ErrDaemonNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(os.Interrupt); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to stop runner: %w", err)
		}
	}

	// The runner is not our child, so poll instead of Wait.
	deadline := time.Now().Add(r.killTimeout)
	for IsProcessRunning(pid) {
		if time.Now().After(deadline) {
			logging.Warn("runner did not exit, killing", logging.KeyPID, pid)
			_ = process.Kill()
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if err := r.pidFile.Remove(); err != nil {
		return err
	}
	r.removeState()
	return nil
}

// Status reports whether a runner is alive and what it last recorded.
func (r *Runner) Status() *Status {
	status := &Status{PIDFile: r.pidFile.Path()}

	pid := r.pidFile.RunningPID()
	if pid == 0 {
		return status
	}
	status.Running = true
	status.PID = pid

	if state, err := r.readState(); err == nil && state.PID == pid {
		status.StartedAt = state.StartedAt
		status.Uptime = FormatUptime(time.Since(state.StartedAt))
		status.Pending = state.Pending
		status.NextFire = state.NextFire
	}
	return status
}

func (r *Runner) writeState(state *State) error {
	if err := os.MkdirAll(filepath.Dir(r.statePath), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(r.statePath, data, 0o644)
}

func (r *Runner) readState() (*State, error) {
	data, err := os.ReadFile(r.statePath)
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *Runner) removeState() {
	if err := os.Remove(r.statePath); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove runner state file", logging.KeyError, err, "path", r.statePath)
	}
}

// DefaultLogPath returns the path of the background runner's log file.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, AppName, "nudge.log")
}

// FormatUptime formats a duration as uptime.
func FormatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	if hours > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}
