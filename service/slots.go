package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ndeen17/Escrow/model"
	"github.com/ndeen17/Escrow/pkg/logger"
)

// Slot kinds. At most one slot of each kind exists per wizard session, and a
// new write overwrites the previous value entirely.
const (
	slotDraft        = "contract_draft"
	slotSubmission   = "pending_submission"
	slotRegistration = "pending_registration" // legacy carrier, no contract payload
)

// DefaultSlotTTL is how long a draft or pending submission survives before it
// is discarded unread.
const DefaultSlotTTL = 48 * time.Hour

// SlotBackend is the durable key/value storage underneath the slot store.
// The ttl passed to Put is advisory garbage collection; the slot store
// enforces expiry itself from the timestamp in the record.
type SlotBackend interface {
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}

// slotRecord wraps every persisted payload with the write time used for the
// expiry check.
type slotRecord struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// SlotStore persists the per-session wizard slots: the contract draft, the
// pending-submission envelope, and the legacy pending-registration envelope.
type SlotStore struct {
	backend SlotBackend
	ttl     time.Duration
}

// NewSlotStore creates a slot store over the given backend.
func NewSlotStore(backend SlotBackend, ttl time.Duration) *SlotStore {
	if ttl <= 0 {
		ttl = DefaultSlotTTL
	}
	return &SlotStore{backend: backend, ttl: ttl}
}

func slotKey(session, kind string) string {
	return fmt.Sprintf("%s/%s", session, kind)
}

func (s *SlotStore) save(ctx context.Context, session, kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal slot payload: %w", err)
	}

	raw, err := json.Marshal(slotRecord{Data: data, Timestamp: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal slot record: %w", err)
	}

	return s.backend.Put(ctx, slotKey(session, kind), raw, s.ttl)
}

// load reads a slot into out and reports its age and whether a live value was
// present. Expired records are deleted unread; corrupt payloads are discarded
// defensively rather than propagated.
func (s *SlotStore) load(ctx context.Context, session, kind string, out any) (time.Duration, bool, error) {
	key := slotKey(session, kind)

	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read slot %s: %w", kind, err)
	}
	if !ok {
		return 0, false, nil
	}

	var rec slotRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		logger.Warn(ctx, "discarding corrupt slot record", "slot", kind, "error", err)
		_ = s.backend.Delete(ctx, key)
		return 0, false, nil
	}

	age := time.Since(rec.Timestamp)
	if age > s.ttl {
		logger.Debug(ctx, "slot expired", "slot", kind, "age_hours", age.Hours())
		_ = s.backend.Delete(ctx, key)
		return 0, false, nil
	}

	if err := json.Unmarshal(rec.Data, out); err != nil {
		logger.Warn(ctx, "discarding corrupt slot payload", "slot", kind, "error", err)
		_ = s.backend.Delete(ctx, key)
		return 0, false, nil
	}

	return age, true, nil
}

func (s *SlotStore) clear(ctx context.Context, session, kind string) error {
	return s.backend.Delete(ctx, slotKey(session, kind))
}

// SaveDraft mirrors the wizard snapshot to the draft slot.
func (s *SlotStore) SaveDraft(ctx context.Context, session string, progress model.WizardProgress) error {
	return s.save(ctx, session, slotDraft, progress)
}

// LoadDraft returns the saved wizard progress and its age, or ok=false when
// no live draft exists.
func (s *SlotStore) LoadDraft(ctx context.Context, session string) (model.WizardProgress, time.Duration, bool, error) {
	var progress model.WizardProgress
	age, ok, err := s.load(ctx, session, slotDraft, &progress)
	return progress, age, ok, err
}

// ClearDraft removes the draft slot.
func (s *SlotStore) ClearDraft(ctx context.Context, session string) error {
	return s.clear(ctx, session, slotDraft)
}

// SaveSubmission writes the pending-submission envelope, stamping CreatedAt.
func (s *SlotStore) SaveSubmission(ctx context.Context, session string, env model.PendingSubmission) error {
	if env.CreatedAt.IsZero() {
		env.CreatedAt = time.Now()
	}
	return s.save(ctx, session, slotSubmission, env)
}

// LoadSubmission returns the live pending-submission envelope, if any.
func (s *SlotStore) LoadSubmission(ctx context.Context, session string) (model.PendingSubmission, bool, error) {
	var env model.PendingSubmission
	_, ok, err := s.load(ctx, session, slotSubmission, &env)
	return env, ok, err
}

// ClearSubmission removes the pending-submission envelope.
func (s *SlotStore) ClearSubmission(ctx context.Context, session string) error {
	return s.clear(ctx, session, slotSubmission)
}

// SaveLegacyRegistration writes the older registration-only carrier.
func (s *SlotStore) SaveLegacyRegistration(ctx context.Context, session string, env model.PendingRegistration) error {
	if env.CreatedAt.IsZero() {
		env.CreatedAt = time.Now()
	}
	return s.save(ctx, session, slotRegistration, env)
}

// LoadLegacyRegistration returns the live legacy registration carrier, if any.
func (s *SlotStore) LoadLegacyRegistration(ctx context.Context, session string) (model.PendingRegistration, bool, error) {
	var env model.PendingRegistration
	_, ok, err := s.load(ctx, session, slotRegistration, &env)
	return env, ok, err
}

// ClearLegacyRegistration removes the legacy registration carrier.
func (s *SlotStore) ClearLegacyRegistration(ctx context.Context, session string) error {
	return s.clear(ctx, session, slotRegistration)
}

// MemoryBackend is an in-memory slot backend for development and tests.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data     []byte
	deadline time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]memoryEntry)}
}

func (b *MemoryBackend) Put(_ context.Context, key string, data []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	b.entries[key] = memoryEntry{data: copied, deadline: time.Now().Add(ttl)}
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.deadline) {
		b.mu.Lock()
		delete(b.entries, key)
		b.mu.Unlock()
		return nil, false, nil
	}
	return entry.data, true, nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
	return nil
}
