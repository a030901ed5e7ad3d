package state

import (
	"sort"
	"sync"
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

// MemoryState is the reconciler state: the cached container population and the
// fingerprint of the last successful write.
type MemoryState struct {
	mu             sync.RWMutex
	containers     map[string]*containerState
	fingerprint    domain.Fingerprint
	hasFingerprint bool
	synced         bool
}

// NewMemoryState creates an empty state with no fingerprint recorded.
func NewMemoryState() *MemoryState {
	return &MemoryState{
		containers: make(map[string]*containerState),
	}
}

// Replace swaps the whole container population for a fresh snapshot.
func (s *MemoryState) Replace(records []domain.ContainerRecord) {
	now := time.Now()
	containers := make(map[string]*containerState, len(records))
	for _, r := range records {
		containers[r.Id] = &containerState{Record: r, LastUpdated: now}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers = containers
	s.synced = true
}

// Synced reports whether a full snapshot has been loaded. Until then the cache only holds
// containers seen through events and must not be written out.
func (s *MemoryState) Synced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.synced
}

// Upsert inserts or updates the state for a container.
func (s *MemoryState) Upsert(record domain.ContainerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers[record.Id] = &containerState{
		Record:      record,
		LastUpdated: time.Now(),
	}
}

// Remove drops a container and reports whether it was known.
func (s *MemoryState) Remove(containerId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.containers[containerId]; exists {
		delete(s.containers, containerId)
		return true
	}
	return false
}

// Containers returns the cached records ordered by container id.
func (s *MemoryState) Containers() []domain.ContainerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.ContainerRecord, 0, len(s.containers))
	for _, cs := range s.containers {
		records = append(records, cs.Record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Id < records[j].Id })
	return records
}

// Fingerprint returns the last written fingerprint, if any.
func (s *MemoryState) Fingerprint() (domain.Fingerprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingerprint, s.hasFingerprint
}

func (s *MemoryState) SetFingerprint(fp domain.Fingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprint = fp
	s.hasFingerprint = true
}

// InvalidateFingerprint forces the next pass to write.
func (s *MemoryState) InvalidateFingerprint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasFingerprint = false
}
