// Package storage provides the database layer for nudge.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/nudge-cli/nudge/internal/clock"
	nerrors "github.com/nudge-cli/nudge/internal/errors"
)

const (
	// AppName is the application name used for data directories.
	AppName = "nudge"
)

// ErrDatabaseLocked is returned when another process holds the database
// directory, typically a running `nudge run`.
var ErrDatabaseLocked = nerrors.ErrDatabaseLocked

// DB wraps a Badger database connection.
type DB struct {
	db    *badger.DB
	path  string
	clock clock.Clock
}

// Options configures the database connection.
type Options struct {
	// Path is the database directory path. Empty string uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
	// Clock stamps CreatedAt and UpdatedAt. Defaults to the wall clock.
	Clock clock.Clock
}

// DefaultPath returns the default database path under the XDG data home.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "db")
}

// Open opens or creates a database at the given path.
func Open(opts Options) (*DB, error) {
	var badgerOpts badger.Options
	path := ""

	if opts.InMemory || opts.Path == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(opts.Path)
		path = opts.Path
	}

	// Reduce logging noise
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		if strings.Contains(err.Error(), "Cannot acquire directory lock") {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseLocked, path)
		}
		return nil, err
	}

	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	return &DB{db: db, path: path, clock: opts.Clock}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// stamp returns the current time without a monotonic reading so that a
// stored timestamp compares equal to its in-memory copy.
func (d *DB) stamp() time.Time {
	return d.clock.Now().Round(0)
}

// Path returns the database directory, or "" for an in-memory database.
func (d *DB) Path() string {
	return d.path
}

// Badger returns the underlying Badger database for advanced operations.
func (d *DB) Badger() *badger.DB {
	return d.db
}
