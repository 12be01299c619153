// Package audio plays alert sounds through whatever command-line player
// the host provides.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"

	"github.com/nudge-cli/nudge/internal/logging"
)

// ErrNoBackend is returned when no supported player command is installed.
var ErrNoBackend = errors.New("no audio player found")

// ErrSoundNotFound is returned when a sound reference does not resolve
// to a readable file.
var ErrSoundNotFound = errors.New("sound file not found")

// bell is written when a notification has no sound.
const bell = "\a"

// backends are tried in order; the first one on PATH wins.
var backends = []struct {
	name string
	args []string
}{
	{"afplay", nil},
	{"paplay", nil},
	{"aplay", []string{"-q"}},
	{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
}

// ExecPlayer plays sound files by running an external player command.
// An empty sound rings the terminal bell instead.
type ExecPlayer struct {
	// Bell receives the terminal bell. Defaults to os.Stdout.
	Bell io.Writer

	lookPath func(string) (string, error)

	once    sync.Once
	command string
	args    []string
}

// NewExecPlayer creates a player that discovers its backend on first use.
func NewExecPlayer() *ExecPlayer {
	return &ExecPlayer{Bell: os.Stdout, lookPath: exec.LookPath}
}

// Play blocks until the sound has finished or ctx is done.
func (p *ExecPlayer) Play(ctx context.Context, sound string) error {
	if sound == "" {
		_, err := io.WriteString(p.Bell, bell)
		return err
	}

	path, err := Resolve(sound)
	if err != nil {
		return err
	}

	p.once.Do(p.discover)
	if p.command == "" {
		return fmt.Errorf("%w (tried afplay, paplay, aplay, ffplay)", ErrNoBackend)
	}

	args := append(append([]string{}, p.args...), path)
	cmd := exec.CommandContext(ctx, p.command, args...)
	logging.DebugLog("playing sound", "player", p.command, "sound", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", filepath.Base(p.command), path, err, out)
	}
	return nil
}

func (p *ExecPlayer) discover() {
	lookPath := p.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, b := range backends {
		if path, err := lookPath(b.name); err == nil {
			p.command = path
			p.args = b.args
			return
		}
	}
}

// Resolve maps a sound reference to a file. Absolute and relative paths
// are used as given; a bare file name is also looked up under
// $XDG_DATA_HOME/nudge/sounds and the XDG data dirs.
func Resolve(sound string) (string, error) {
	if info, err := os.Stat(sound); err == nil && !info.IsDir() {
		return sound, nil
	}
	if filepath.Base(sound) == sound {
		if path, err := xdg.SearchDataFile(filepath.Join("nudge", "sounds", sound)); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSoundNotFound, sound)
}

// Silent discards every sound.
type Silent struct{}

// Play does nothing.
func (Silent) Play(context.Context, string) error { return nil }
