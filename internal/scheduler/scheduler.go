// Package scheduler holds pending notifications in minute buckets and
// delivers them when their minute arrives.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/nudge-cli/nudge/internal/clock"
	"github.com/nudge-cli/nudge/internal/logging"
	"github.com/nudge-cli/nudge/internal/model"
)

// Scheduler owns a Store and serializes every operation on it. The
// poller and the delivery handler reach the store only through it.
type Scheduler struct {
	mu    sync.Mutex
	store *Store
	clock clock.Clock
}

// NewScheduler creates a scheduler with an empty store. A nil clock
// uses the wall clock.
func NewScheduler(c clock.Clock) *Scheduler {
	if c == nil {
		c = clock.Real()
	}
	return &Scheduler{
		store: NewStore(),
		clock: c,
	}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Push admits n into its fire-time bucket. An occupied bucket is
// ErrAlreadyScheduled. A fire time that is not after now is silently
// ignored.
func (s *Scheduler) Push(n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.push(n)
}

func (s *Scheduler) push(n model.Notification) error {
	b := BucketOf(n.FireTime)
	if s.store.Has(b) {
		return fmt.Errorf("%w: %s", ErrAlreadyScheduled, b)
	}
	if !n.FireTime.After(s.clock.Now()) {
		logging.DebugLog("skipping notification in the past",
			logging.KeySubject, n.SubjectKey,
			logging.KeyBucket, b.String())
		return nil
	}
	s.store.Insert(b, n)
	return nil
}

// Pop removes the notification occupying n's fire-time bucket. An empty
// bucket is ErrNotFound.
func (s *Scheduler) Pop(n model.Notification) error {
	return s.Remove(BucketOf(n.FireTime))
}

// Remove clears bucket b. An empty bucket is ErrNotFound.
func (s *Scheduler) Remove(b Bucket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Remove(b) {
		return fmt.Errorf("%w: %s", ErrNotFound, b)
	}
	return nil
}

// PopOwned removes the notification in n's fire-time bucket only if it
// belongs to n's subject. An empty bucket, or one held by another
// subject, is ErrNotFound.
func (s *Scheduler) PopOwned(n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := BucketOf(n.FireTime)
	cur, ok := s.store.Get(b)
	if !ok || cur.Kind != n.Kind || cur.SubjectKey != n.SubjectKey {
		return fmt.Errorf("%w: %s", ErrNotFound, b)
	}
	s.store.Remove(b)
	return nil
}

// RemoveSubject clears every notification of the given subject, wherever
// recurrence or snoozing moved it. It returns how many were cleared.
func (s *Scheduler) RemoveSubject(kind model.Kind, key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.RemoveIf(func(n model.Notification) bool {
		return n.Kind == kind && n.SubjectKey == key
	})
}

// Requeue moves n to fire at the given time as one atomic step. If the
// target bucket is held by another notification it returns
// ErrAlreadyScheduled and the store is unchanged. Otherwise n's current
// bucket is cleared if occupied and a copy firing at is pushed.
func (s *Scheduler) Requeue(n model.Notification, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := BucketOf(n.FireTime), BucketOf(at)
	if from != to && s.store.Has(to) {
		return fmt.Errorf("%w: %s", ErrAlreadyScheduled, to)
	}
	s.store.Remove(from)
	return s.push(n.At(at))
}

// Due returns a copy of the notification in now's bucket, if any.
func (s *Scheduler) Due(now time.Time) (model.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(BucketOf(now))
}

// Lookup returns the notification in bucket b, if any.
func (s *Scheduler) Lookup(b Bucket) (model.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(b)
}

// Pending returns every scheduled notification in fire-time order.
func (s *Scheduler) Pending() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.All()
}

// Len returns the number of scheduled notifications.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}
