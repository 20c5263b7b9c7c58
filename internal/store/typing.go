package store

import (
	"sync"
	"time"
)

// TypingStore holds ephemeral per-pair, per-device typing timestamps.
// A mark is active only while now − timestamp < window; staleness is
// evaluated lazily at read time, there is no sweeper for these.
type TypingStore struct {
	mu     sync.Mutex
	marks  map[string]map[string]time.Time
	window time.Duration
}

func NewTypingStore(window time.Duration) *TypingStore {
	return &TypingStore{
		marks:  make(map[string]map[string]time.Time),
		window: window,
	}
}

// Set records or refreshes the typing mark for (pairID, deviceID).
func (s *TypingStore) Set(pairID, deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairMarks, ok := s.marks[pairID]
	if !ok {
		pairMarks = make(map[string]time.Time)
		s.marks[pairID] = pairMarks
	}
	pairMarks[deviceID] = time.Now()
}

// Unset removes the mark immediately; explicit cancellation rather than
// waiting out the liveness window.
func (s *TypingStore) Unset(pairID, deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pairMarks, ok := s.marks[pairID]; ok {
		delete(pairMarks, deviceID)
		if len(pairMarks) == 0 {
			delete(s.marks, pairID)
		}
	}
}

// Active reports whether the device's mark is inside the liveness window.
// Stale marks are deleted on the way out.
func (s *TypingStore) Active(pairID, deviceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairMarks, ok := s.marks[pairID]
	if !ok {
		return false
	}
	ts, ok := pairMarks[deviceID]
	if !ok {
		return false
	}
	if time.Since(ts) >= s.window {
		delete(pairMarks, deviceID)
		if len(pairMarks) == 0 {
			delete(s.marks, pairID)
		}
		return false
	}
	return true
}

// Destroy drops all marks for a destroyed pair.
func (s *TypingStore) Destroy(pairID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.marks, pairID)
}
