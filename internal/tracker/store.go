package tracker

import (
	"context"
	"fmt"
	"time"
)

// Store is the injectable state backend: user profiles, the ordered
// activity log, and the global counters. The tracker serializes all
// mutations, so implementations only need to make AppendBatch itself
// atomic (records and counters commit together or not at all).
type Store interface {
	// GetProfile returns the profile for userID, or ErrUnknownUser.
	GetProfile(ctx context.Context, userID string) (UserProfile, error)

	// PutProfile inserts or replaces a profile.
	PutProfile(ctx context.Context, profile UserProfile) error

	// RecordsByUser returns the user's records in append order.
	RecordsByUser(ctx context.Context, userID string) ([]ActivityRecord, error)

	// SavedSince sums co2_saved_kg over records logged strictly after
	// the cutoff.
	SavedSince(ctx context.Context, since time.Time) (float64, error)

	// AppendBatch appends records and installs the updated global
	// counters in one atomic step.
	AppendBatch(ctx context.Context, records []ActivityRecord, stats GlobalStats) error

	// GlobalStats returns the current global counters.
	GlobalStats(ctx context.Context) (GlobalStats, error)

	// SetGlobalStats replaces the global counters.
	SetGlobalStats(ctx context.Context, stats GlobalStats) error
}

// MemStore is the in-process Store. It holds everything in maps and a
// single append-only slice; the tracker's lock provides the
// concurrency discipline, so MemStore itself stays lock-free.
type MemStore struct {
	profiles map[string]UserProfile
	records  []ActivityRecord
	stats    GlobalStats
}

// NewMemStore creates an empty in-memory store seeded with the given
// global counters.
func NewMemStore(seed GlobalStats) *MemStore {
	return &MemStore{
		profiles: make(map[string]UserProfile),
		stats:    seed,
	}
}

// GetProfile implements Store.
func (s *MemStore) GetProfile(_ context.Context, userID string) (UserProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return UserProfile{}, fmt.Errorf("%w: %q", ErrUnknownUser, userID)
	}
	return p, nil
}

// PutProfile implements Store.
func (s *MemStore) PutProfile(_ context.Context, profile UserProfile) error {
	s.profiles[profile.UserID] = profile
	return nil
}

// RecordsByUser implements Store.
func (s *MemStore) RecordsByUser(_ context.Context, userID string) ([]ActivityRecord, error) {
	var out []ActivityRecord
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// SavedSince implements Store.
func (s *MemStore) SavedSince(_ context.Context, since time.Time) (float64, error) {
	var sum float64
	for _, r := range s.records {
		if r.LoggedAt.After(since) {
			sum += r.CO2SavedKg
		}
	}
	return sum, nil
}

// AppendBatch implements Store.
func (s *MemStore) AppendBatch(_ context.Context, records []ActivityRecord, stats GlobalStats) error {
	s.records = append(s.records, records...)
	s.stats = stats
	return nil
}

// GlobalStats implements Store.
func (s *MemStore) GlobalStats(_ context.Context) (GlobalStats, error) {
	return s.stats, nil
}

// SetGlobalStats implements Store.
func (s *MemStore) SetGlobalStats(_ context.Context, stats GlobalStats) error {
	s.stats = stats
	return nil
}
