package scheduler

import (
	"slices"

	"github.com/nudge-cli/nudge/internal/model"
)

// Store maps minute buckets to the single notification pending in each.
// It is not safe for concurrent use; a Scheduler owns one and serializes
// access to it.
type Store struct {
	entries map[Bucket]model.Notification
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Bucket]model.Notification)}
}

// Get returns the notification in bucket b.
func (s *Store) Get(b Bucket) (model.Notification, bool) {
	n, ok := s.entries[b]
	return n, ok
}

// Has reports whether bucket b is occupied.
func (s *Store) Has(b Bucket) bool {
	_, ok := s.entries[b]
	return ok
}

// Insert places n in bucket b. It returns false and leaves the store
// unchanged if b is occupied.
func (s *Store) Insert(b Bucket, n model.Notification) bool {
	if _, ok := s.entries[b]; ok {
		return false
	}
	s.entries[b] = n
	return true
}

// Remove clears bucket b, reporting whether it was occupied.
func (s *Store) Remove(b Bucket) bool {
	if _, ok := s.entries[b]; !ok {
		return false
	}
	delete(s.entries, b)
	return true
}

// RemoveIf clears every bucket whose notification matches, returning
// how many were cleared.
func (s *Store) RemoveIf(match func(model.Notification) bool) int {
	removed := 0
	for b, n := range s.entries {
		if match(n) {
			delete(s.entries, b)
			removed++
		}
	}
	return removed
}

// Len returns the number of occupied buckets.
func (s *Store) Len() int {
	return len(s.entries)
}

// All returns every notification ordered by bucket.
func (s *Store) All() []model.Notification {
	buckets := make([]Bucket, 0, len(s.entries))
	for b := range s.entries {
		buckets = append(buckets, b)
	}
	slices.Sort(buckets)

	out := make([]model.Notification, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, s.entries[b])
	}
	return out
}
