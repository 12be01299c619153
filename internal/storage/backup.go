package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nudge-cli/nudge/internal/model"
)

// BackupVersion is the format version written by Snapshot.
const BackupVersion = "1"

// Backup is a full copy of the stored records.
type Backup struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Reminders   []*model.Reminder  `json:"reminders"`
	Tasks       []*model.Task      `json:"tasks"`
	Notes       []*model.Note      `json:"notes"`
	Preferences *model.Preferences `json:"preferences,omitempty"`
}

// Count returns the number of records in the backup, preferences excluded.
func (b *Backup) Count() int {
	return len(b.Reminders) + len(b.Tasks) + len(b.Notes)
}

// Snapshot copies every record in d.
func (d *DB) Snapshot(now time.Time) (*Backup, error) {
	reminders, err := NewReminderRepo(d).List()
	if err != nil {
		return nil, err
	}
	tasks, err := NewTaskRepo(d).List()
	if err != nil {
		return nil, err
	}
	notes, err := NewNoteRepo(d).List()
	if err != nil {
		return nil, err
	}
	prefs, err := NewPreferencesRepo(d).Get()
	if err != nil {
		return nil, err
	}

	return &Backup{
		Version:     BackupVersion,
		ExportedAt:  now.UTC(),
		Reminders:   reminders,
		Tasks:       tasks,
		Notes:       notes,
		Preferences: prefs,
	}, nil
}

// WriteBackup encodes b as indented JSON.
func WriteBackup(w io.Writer, b *Backup) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(b)
}

// ReadBackup decodes a backup and checks its version.
func ReadBackup(r io.Reader) (*Backup, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to parse backup: %w", err)
	}
	if b.Version == "" {
		return nil, fmt.Errorf("not a nudge backup: missing version")
	}
	if b.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", b.Version)
	}
	return &b, nil
}
