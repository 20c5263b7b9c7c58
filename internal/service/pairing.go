package service

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/duolink/relay-server-go/internal/errors"
	"github.com/duolink/relay-server-go/internal/model"
	"github.com/duolink/relay-server-go/internal/store"
)

// PairingService issues codes, exchanges them into pairs, and answers the
// membership questions every relay operation depends on. It also keeps the
// message and typing stores in lockstep with pair lifecycle: a conversation
// window exists exactly as long as its pair does.
type PairingService struct {
	codes    *store.CodeStore
	pairs    *store.PairStore
	messages *store.MessageStore
	typing   *store.TypingStore
	codeTTL  time.Duration
}

func NewPairingService(
	codes *store.CodeStore,
	pairs *store.PairStore,
	messages *store.MessageStore,
	typing *store.TypingStore,
	codeTTL time.Duration,
) *PairingService {
	return &PairingService{
		codes:    codes,
		pairs:    pairs,
		messages: messages,
		typing:   typing,
		codeTTL:  codeTTL,
	}
}

// GenerateCode issues a fresh pairing code for an unpaired device.
func (s *PairingService) GenerateCode(deviceID string) (*model.PendingCode, error) {
	if s.pairs.IsPaired(deviceID) {
		return nil, apperrors.AlreadyPaired()
	}

	pc, err := s.codes.Allocate(deviceID, s.codeTTL)
	if err != nil {
		if errors.Is(err, store.ErrCodeSpaceFull) {
			log.Error().Str("deviceId", deviceID).Msg("pending code table exhausted")
			return nil, apperrors.CodeExhausted()
		}
		return nil, apperrors.Internal("failed to allocate pairing code").WithCause(err)
	}

	log.Info().
		Str("code", pc.Code).
		Str("deviceId", deviceID).
		Time("expiresAt", pc.ExpiresAt).
		Msg("pairing code created")

	return pc, nil
}

type JoinResult struct {
	Pair          *model.Pair
	OwnerDeviceID string
}

// Join exchanges a pending code into a live pair. The joining device must
// differ from the code owner and neither device may already be paired.
func (s *PairingService) Join(code, joiningDeviceID string) (*JoinResult, error) {
	pc, ok := s.codes.Get(code)
	if !ok || pc.Bound() {
		return nil, apperrors.NotFound("Pairing code")
	}
	if pc.OwnerDeviceID == joiningDeviceID {
		return nil, apperrors.SelfPairForbidden()
	}

	pair, err := s.pairs.Create(pc.OwnerDeviceID, joiningDeviceID)
	if err != nil {
		if errors.Is(err, store.ErrDevicePaired) {
			return nil, apperrors.AlreadyPaired()
		}
		return nil, apperrors.Internal("failed to create pair").WithCause(err)
	}

	s.messages.Init(pair.ID)

	if err := s.codes.Bind(code, pair.ID); err != nil {
		// Lost a race on the code between Get and Bind; roll the pair back
		// so the winning exchange stays the only one.
		s.pairs.Delete(pair.ID)
		s.messages.Destroy(pair.ID)
		return nil, apperrors.NotFound("Pairing code")
	}

	log.Info().
		Str("code", code).
		Str("pairId", pair.ID).
		Str("ownerDeviceId", pc.OwnerDeviceID).
		Str("joiningDeviceId", joiningDeviceID).
		Msg("pair created")

	return &JoinResult{Pair: pair, OwnerDeviceID: pc.OwnerDeviceID}, nil
}

type StatusResult struct {
	Paired          bool
	PairID          string
	PartnerDeviceID string
}

// Status answers the generating device's poll. Only the code owner may ask;
// a third party who intercepts the code value gets NotAuthorized, not state.
func (s *PairingService) Status(deviceID, code string) (*StatusResult, error) {
	pc, ok := s.codes.Get(code)
	if !ok {
		return nil, apperrors.NotFound("Pairing code")
	}
	if pc.OwnerDeviceID != deviceID {
		return nil, apperrors.NotCodeOwner()
	}

	if !pc.Bound() {
		return &StatusResult{Paired: false}, nil
	}

	pair, ok := s.pairs.Get(*pc.BoundPairID)
	if !ok {
		// Pair destroyed inside the grace window.
		return nil, apperrors.NotFound("Pair")
	}
	partner, _ := pair.PartnerOf(deviceID)

	return &StatusResult{
		Paired:          true,
		PairID:          pair.ID,
		PartnerDeviceID: partner,
	}, nil
}

// Authorize resolves the pair and checks membership. NotFound is reported
// before NotAuthorized so an unknown pair id never leaks membership info.
func (s *PairingService) Authorize(pairID, deviceID string) (*model.Pair, error) {
	pair, ok := s.pairs.Get(pairID)
	if !ok {
		return nil, apperrors.NotFound("Pair")
	}
	if !pair.HasMember(deviceID) {
		return nil, apperrors.NotAuthorized()
	}
	return pair, nil
}

// Unpair destroys the pair along with its conversation window and typing
// marks, freeing both devices for re-pairing.
func (s *PairingService) Unpair(pairID string) {
	s.pairs.Delete(pairID)
	s.messages.Destroy(pairID)
	s.typing.Destroy(pairID)

	log.Info().Str("pairId", pairID).Msg("pair destroyed")
}

// ActivePairs reports the live pair count for health diagnostics.
func (s *PairingService) ActivePairs() int {
	return s.pairs.Count()
}

// PendingCodes reports the live pending-code count for health diagnostics.
func (s *PairingService) PendingCodes() int {
	return s.codes.Count()
}
