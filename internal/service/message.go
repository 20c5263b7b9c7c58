package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/duolink/relay-server-go/internal/errors"
	"github.com/duolink/relay-server-go/internal/model"
	"github.com/duolink/relay-server-go/internal/store"
)

// MessageService relays messages through a pair's bounded conversation
// window. Callers are expected to have authorized the device against the
// pair already; this layer only deals in content.
type MessageService struct {
	store           *store.MessageStore
	maxContentRunes int
}

func NewMessageService(messageStore *store.MessageStore, maxContentRunes int) *MessageService {
	return &MessageService{
		store:           messageStore,
		maxContentRunes: maxContentRunes,
	}
}

// Send appends a message to the pair's window. Over-long content is
// truncated, never rejected; an omitted kind defaults to text.
func (s *MessageService) Send(pairID, senderID string, kind model.MessageKind, content string) (*model.Message, error) {
	if kind == "" {
		kind = model.MessageKindText
	}
	if !kind.Valid() {
		return nil, apperrors.InvalidInput("kind", "must be \"text\" or \"image\"")
	}

	if runes := []rune(content); len(runes) > s.maxContentRunes {
		content = string(runes[:s.maxContentRunes])
	}

	msg := model.Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Kind:      kind,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := s.store.Append(pairID, msg); err != nil {
		return nil, apperrors.NotFound("Pair").WithCause(err)
	}

	log.Debug().
		Str("messageId", msg.ID).
		Str("pairId", pairID).
		Str("senderId", senderID).
		Str("kind", string(kind)).
		Msg("message relayed")

	return &msg, nil
}

// PollAndAcknowledge returns the full current window for the reader and
// implicitly marks every unread partner message as read. Pull with implicit
// acknowledgment; there is no fetch-without-acknowledge mode.
func (s *MessageService) PollAndAcknowledge(pairID, readerID string) ([]model.Message, error) {
	msgs, err := s.store.PollAndAcknowledge(pairID, readerID)
	if err != nil {
		return nil, apperrors.NotFound("Pair").WithCause(err)
	}
	return msgs, nil
}

// MarkRead flips read=true for the listed messages the reader did not send.
// Unknown ids are ignored; repeated calls are idempotent.
func (s *MessageService) MarkRead(pairID, readerID string, messageIDs []string) error {
	ids := make(map[string]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		ids[id] = struct{}{}
	}

	marked, err := s.store.MarkRead(pairID, readerID, ids)
	if err != nil {
		return apperrors.NotFound("Pair").WithCause(err)
	}

	log.Debug().
		Str("pairId", pairID).
		Str("readerId", readerID).
		Int("requested", len(messageIDs)).
		Int("marked", marked).
		Msg("messages marked read")

	return nil
}

// Clear empties the pair's conversation window without destroying the pair.
func (s *MessageService) Clear(pairID string) error {
	if err := s.store.Clear(pairID); err != nil {
		return apperrors.NotFound("Pair").WithCause(err)
	}

	log.Info().Str("pairId", pairID).Msg("conversation cleared")
	return nil
}
