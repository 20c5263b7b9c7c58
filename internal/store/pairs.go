package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/duolink/relay-server-go/internal/model"
)

// PairStore owns the pair table and the device→pair index that enforces
// the one-pairing-per-device invariant.
type PairStore struct {
	mu       sync.Mutex
	pairs    map[string]*model.Pair
	byDevice map[string]string
}

func NewPairStore() *PairStore {
	return &PairStore{
		pairs:    make(map[string]*model.Pair),
		byDevice: make(map[string]string),
	}
}

// Create registers a new pair for two distinct devices. The membership
// check and the insert are one critical section, so two racing joins can
// never bind the same device into two pairs.
func (s *PairStore) Create(deviceA, deviceB string) (*model.Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, paired := s.byDevice[deviceA]; paired {
		return nil, ErrDevicePaired
	}
	if _, paired := s.byDevice[deviceB]; paired {
		return nil, ErrDevicePaired
	}

	pair := &model.Pair{
		ID:        uuid.NewString(),
		DeviceA:   deviceA,
		DeviceB:   deviceB,
		CreatedAt: time.Now(),
	}
	s.pairs[pair.ID] = pair
	s.byDevice[deviceA] = pair.ID
	s.byDevice[deviceB] = pair.ID

	copied := *pair
	return &copied, nil
}

// Get returns a snapshot of the pair.
func (s *PairStore) Get(pairID string) (*model.Pair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair, ok := s.pairs[pairID]
	if !ok {
		return nil, false
	}
	copied := *pair
	return &copied, true
}

// IsPaired reports whether the device belongs to a live pair.
func (s *PairStore) IsPaired(deviceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, paired := s.byDevice[deviceID]
	return paired
}

// Delete destroys the pair and frees both devices for re-pairing.
func (s *PairStore) Delete(pairID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair, ok := s.pairs[pairID]
	if !ok {
		return false
	}
	delete(s.pairs, pairID)
	delete(s.byDevice, pair.DeviceA)
	delete(s.byDevice, pair.DeviceB)
	return true
}

// Count reports the number of live pairs.
func (s *PairStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pairs)
}
