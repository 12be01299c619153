package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nudge-cli/nudge/internal/errors"
)

// ============================================================================
// PID file
// ============================================================================

func TestPIDFileWriteRead(t *testing.T) {
	p := NewPIDFile(filepath.Join(t.TempDir(), "run", "nudge.pid"))

	require.NoError(t, p.Write())
	pid, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.True(t, p.IsRunning())
	assert.Equal(t, os.Getpid(), p.RunningPID())

	require.NoError(t, p.Remove())
	assert.False(t, p.IsRunning())
	// Removing twice is fine.
	assert.NoError(t, p.Remove())
}

func TestPIDFileMissing(t *testing.T) {
	p := NewPIDFile(filepath.Join(t.TempDir(), "nudge.pid"))

	_, err := p.Read()
	assert.ErrorIs(t, err, errors.ErrDaemonNotRunning)
	assert.Equal(t, 0, p.RunningPID())
}

func TestPIDFileGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nudge.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	_, err := NewPIDFile(path).Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PID")
}

func TestPIDFileDefaultPath(t *testing.T) {
	p := NewPIDFile("")
	assert.Equal(t, DefaultPIDPath(), p.Path())
	assert.Equal(t, PIDFileName, filepath.Base(p.Path()))
}

func TestIsProcessRunning(t *testing.T) {
	assert.True(t, IsProcessRunning(os.Getpid()))
	assert.False(t, IsProcessRunning(0))
	assert.False(t, IsProcessRunning(-1))
}

// ============================================================================
// Runner
// ============================================================================

type fakeService struct {
	started atomic.Int32
	stopped atomic.Int32
	err     error
}

func (s *fakeService) Start() error {
	s.started.Add(1)
	return s.err
}

func (s *fakeService) Stop() { s.stopped.Add(1) }

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	dir := t.TempDir()
	return NewRunner(Options{
		PIDPath:       filepath.Join(dir, "nudge.pid"),
		StatePath:     filepath.Join(dir, "state.json"),
		KillTimeout:   time.Second,
		StateInterval: 10 * time.Millisecond,
	})
}

func TestRunnerRunWritesStateAndCleansUp(t *testing.T) {
	r := newTestRunner(t)
	svc := &fakeService{}
	next := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, svc, func() Snapshot { return Snapshot{Pending: 3, NextFire: next} })
	}()

	require.Eventually(t, func() bool {
		st := r.Status()
		return st.Running && st.Pending == 3
	}, 2*time.Second, 10*time.Millisecond)

	st := r.Status()
	assert.Equal(t, os.Getpid(), st.PID)
	assert.True(t, st.NextFire.Equal(next))
	assert.NotEmpty(t, st.Uptime)

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), svc.started.Load())
	assert.Equal(t, int32(1), svc.stopped.Load())
	assert.False(t, r.IsRunning())
	_, err := os.Stat(r.statePath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunnerRunServiceStartFails(t *testing.T) {
	r := newTestRunner(t)
	svc := &fakeService{err: assert.AnError}

	err := r.Run(context.Background(), svc, nil)
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, r.IsRunning())
}

func TestRunnerRunRefusesSecondInstance(t *testing.T) {
	r := newTestRunner(t)
	// PID 1 is always alive on Unix.
	require.NoError(t, r.pidFile.WritePID(1))

	err := r.Run(context.Background(), &fakeService{}, nil)
	assert.ErrorIs(t, err, errors.ErrDaemonRunning)
}

func TestRunnerStopNotRunning(t *testing.T) {
	r := newTestRunner(t)
	assert.ErrorIs(t, r.Stop(), errors.ErrDaemonNotRunning)
}

func TestRunnerStatusNotRunning(t *testing.T) {
	r := newTestRunner(t)

	st := r.Status()
	assert.False(t, st.Running)
	assert.Zero(t, st.PID)
	assert.Equal(t, r.pidFile.Path(), st.PIDFile)
}

func TestRunnerStatusIgnoresForeignState(t *testing.T) {
	r := newTestRunner(t)
	require.NoError(t, r.pidFile.Write())
	require.NoError(t, r.writeState(&State{PID: 1, Snapshot: Snapshot{Pending: 9}}))

	st := r.Status()
	assert.True(t, st.Running)
	assert.Zero(t, st.Pending)
}

func TestLastLogError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nudge.log")
	require.NoError(t, os.WriteFile(path, []byte(
		"time=x level=INFO msg=starting\ntime=x level=ERROR msg=\"database locked\"\ntime=x level=INFO msg=bye\n"), 0o644))

	assert.Contains(t, lastLogError(path), "database locked")
	assert.Empty(t, lastLogError(filepath.Join(t.TempDir(), "absent.log")))
}

// ============================================================================
// Helpers
// ============================================================================

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{48 * time.Hour, "2d"},
		{50 * time.Hour, "2d 2h"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUptime(tt.d))
		})
	}
}

func TestDefaultLogPath(t *testing.T) {
	assert.Equal(t, "nudge.log", filepath.Base(DefaultLogPath()))
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(DefaultLogPath())))
}
