package store

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/duolink/relay-server-go/internal/model"
)

// CodeStore owns the pending pairing codes. There is no background sweeper;
// every entry point purges stale codes first, so an idle process may hold a
// few expired entries until the next request arrives. Codes are single-digit
// kilobytes and self-limiting, which makes that acceptable.
type CodeStore struct {
	mu          sync.Mutex
	codes       map[string]*model.PendingCode
	grace       time.Duration
	maxAttempts int
}

func NewCodeStore(grace time.Duration, maxAttempts int) *CodeStore {
	return &CodeStore{
		codes:       make(map[string]*model.PendingCode),
		grace:       grace,
		maxAttempts: maxAttempts,
	}
}

// sweepLocked removes expired codes and bound codes past the grace window.
// Callers must hold mu.
func (s *CodeStore) sweepLocked(now time.Time) {
	for code, pc := range s.codes {
		if pc.Expired(now) {
			delete(s.codes, code)
			continue
		}
		if pc.Bound() && now.Sub(*pc.BoundAt) > s.grace {
			delete(s.codes, code)
		}
	}
}

// Allocate draws a uniformly random 4-digit code that does not collide with
// any currently pending code, registers it for ownerDeviceID, and returns it.
// Any earlier pending code owned by the same device is replaced. Returns
// ErrCodeSpaceFull when maxAttempts draws all collide.
func (s *CodeStore) Allocate(ownerDeviceID string, ttl time.Duration) (*model.PendingCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.sweepLocked(now)

	for code, pc := range s.codes {
		if pc.OwnerDeviceID == ownerDeviceID && !pc.Bound() {
			delete(s.codes, code)
		}
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code := randomCode()
		if _, taken := s.codes[code]; taken {
			continue
		}
		pc := &model.PendingCode{
			Code:          code,
			OwnerDeviceID: ownerDeviceID,
			CreatedAt:     now,
			ExpiresAt:     now.Add(ttl),
		}
		s.codes[code] = pc
		copied := *pc
		return &copied, nil
	}

	return nil, ErrCodeSpaceFull
}

// Get returns a snapshot of the pending code, sweeping stale entries first.
func (s *CodeStore) Get(code string) (*model.PendingCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(time.Now())

	pc, ok := s.codes[code]
	if !ok {
		return nil, false
	}
	copied := *pc
	return &copied, true
}

// Bind marks the code as exchanged into pairID. The code stays in the table
// for the grace window so the owner's concurrent status poll can observe
// the transition exactly once.
func (s *CodeStore) Bind(code, pairID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.sweepLocked(now)

	pc, ok := s.codes[code]
	if !ok {
		return ErrCodeNotFound
	}
	if pc.Bound() {
		return ErrCodeAlreadyBound
	}

	pc.BoundPairID = &pairID
	pc.BoundAt = &now
	return nil
}

// Count reports the number of live pending codes after a sweep.
func (s *CodeStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(time.Now())
	return len(s.codes)
}

// randomCode draws a uniform 4-digit decimal code in 1000–9999.
func randomCode() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(9000))
	return strconv.FormatInt(n.Int64()+1000, 10)
}
