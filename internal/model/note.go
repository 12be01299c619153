package model

import (
	"strings"
	"time"
)

// Note is a free-form text record. Notes are never scheduled.
type Note struct {
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SetKey sets the database key for this note.
func (n *Note) SetKey(key string) {
	n.Key = key
}

// GetKey returns the database key for this note.
func (n *Note) GetKey() string {
	return n.Key
}

// ShortID returns the abbreviated id used in listings.
func (n *Note) ShortID() string {
	return ShortID(n.Key)
}

// Validate checks the note's fields.
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	return nil
}
