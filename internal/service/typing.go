package service

import (
	"github.com/duolink/relay-server-go/internal/model"
	"github.com/duolink/relay-server-go/internal/store"
)

// TypingService translates typing intents into ephemeral marks and answers
// the partner-side liveness question during polls.
type TypingService struct {
	store *store.TypingStore
}

func NewTypingService(typingStore *store.TypingStore) *TypingService {
	return &TypingService{store: typingStore}
}

// SetTyping records or cancels the device's typing mark.
func (s *TypingService) SetTyping(pairID, deviceID string, isTyping bool) {
	if isTyping {
		s.store.Set(pairID, deviceID)
		return
	}
	s.store.Unset(pairID, deviceID)
}

// IsPartnerTyping resolves the viewer's partner and evaluates that mark
// against the liveness window at read time.
func (s *TypingService) IsPartnerTyping(pair *model.Pair, viewerDeviceID string) bool {
	partner, ok := pair.PartnerOf(viewerDeviceID)
	if !ok {
		return false
	}
	return s.store.Active(pair.ID, partner)
}
