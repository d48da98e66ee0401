package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ndeen17/Escrow/model"
)

// ProfileStore caches user profiles returned by the escrow backend, keyed by
// identity subject. The reconciler falls back to this cache when no envelope
// is pending, which is what makes re-entering the dashboard a no-op.
type ProfileStore struct {
	profiles    map[string]*cachedProfile
	mu          sync.RWMutex
	maxProfiles int // Maximum profiles to keep, 0 = unlimited
}

type cachedProfile struct {
	profile  model.UserProfile
	cachedAt time.Time
}

// NewProfileStore creates a profile cache capped at maxProfiles entries.
func NewProfileStore(maxProfiles int) *ProfileStore {
	if maxProfiles < 0 {
		maxProfiles = 0
	}
	return &ProfileStore{
		profiles:    make(map[string]*cachedProfile),
		maxProfiles: maxProfiles,
	}
}

// Put caches a profile under its subject.
func (s *ProfileStore) Put(profile model.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.Subject] = &cachedProfile{
		profile:  profile,
		cachedAt: time.Now(),
	}

	// Cleanup if exceeds max
	s.cleanupIfNeeded()
}

// Get returns the cached profile for a subject.
func (s *ProfileStore) Get(subject string) (model.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.profiles[subject]
	if !ok {
		return model.UserProfile{}, false
	}
	return entry.profile, true
}

// Delete removes a cached profile.
func (s *ProfileStore) Delete(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, subject)
}

// Count returns the number of cached profiles.
func (s *ProfileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// cleanupIfNeeded evicts the oldest profiles if the cache exceeds
// maxProfiles. Must be called with lock held.
func (s *ProfileStore) cleanupIfNeeded() {
	if s.maxProfiles <= 0 {
		return // Unlimited
	}

	if len(s.profiles) <= s.maxProfiles {
		return
	}

	type aged struct {
		subject  string
		cachedAt time.Time
	}
	entries := make([]aged, 0, len(s.profiles))
	for subject, entry := range s.profiles {
		entries = append(entries, aged{subject: subject, cachedAt: entry.cachedAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].cachedAt.Before(entries[j].cachedAt)
	})

	removeCount := len(entries) - s.maxProfiles
	for i := 0; i < removeCount; i++ {
		slog.Info("evicting cached profile",
			"subject", entries[i].subject,
			"cached_at", entries[i].cachedAt,
		)
		delete(s.profiles, entries[i].subject)
	}
}
