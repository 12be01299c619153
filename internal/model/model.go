// Package model defines the records nudge stores and schedules.
package model

import (
	"fmt"
	"strings"
)

// Model is the interface that all database models must implement.
type Model interface {
	// SetKey sets the database key for this model.
	SetKey(key string)
	// GetKey returns the database key for this model.
	GetKey() string
}

// KeyPrefix constants for database key generation.
const (
	PrefixReminder = "reminder"
	PrefixTask     = "task"
	PrefixNote     = "note"
	KeyPreferences = "config:preferences"
)

// shortIDLen is the number of id characters shown in listings.
const shortIDLen = 6

// GenerateKey builds a database key of the form "prefix:id".
func GenerateKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// ShortID returns the first characters of the id part of key for display.
func ShortID(key string) string {
	_, id, ok := strings.Cut(key, ":")
	if !ok {
		return key
	}
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
