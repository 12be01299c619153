package storage

import (
	"slices"

	"github.com/google/uuid"
	"github.com/nudge-cli/nudge/internal/model"
)

// NoteRepo provides operations for Note entities.
type NoteRepo struct {
	db *DB
}

// NewNoteRepo creates a new note repository.
func NewNoteRepo(db *DB) *NoteRepo {
	return &NoteRepo{db: db}
}

// Create validates and stores a new note with a generated key.
func (r *NoteRepo) Create(note *model.Note) error {
	if note.Key == "" {
		note.Key = model.GenerateKey(model.PrefixNote, uuid.New().String())
	}
	now := r.db.stamp()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now
	if err := note.Validate(); err != nil {
		return err
	}
	return r.db.Set(note)
}

// Get retrieves a note by key.
func (r *NoteRepo) Get(key string) (*model.Note, error) {
	note := &model.Note{}
	if err := r.db.Get(key, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Resolve retrieves a note by key, id or id prefix.
func (r *NoteRepo) Resolve(ref string) (*model.Note, error) {
	return Resolve(r.db, model.PrefixNote, ref, newNote)
}

// List retrieves all notes, newest first.
func (r *NoteRepo) List() ([]*model.Note, error) {
	notes, err := GetAllByPrefix(r.db, model.PrefixNote+":", newNote)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(notes, func(a, b *model.Note) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return notes, nil
}

// Update validates and stores an existing note.
func (r *NoteRepo) Update(note *model.Note) error {
	note.UpdatedAt = r.db.stamp()
	if err := note.Validate(); err != nil {
		return err
	}
	return r.db.Set(note)
}

// Delete removes a note by key.
func (r *NoteRepo) Delete(key string) error {
	return r.db.Delete(key)
}

func newNote() *model.Note {
	return &model.Note{}
}
