package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/duolink/relay-server-go/internal/audit"
	apperrors "github.com/duolink/relay-server-go/internal/errors"
	"github.com/duolink/relay-server-go/internal/httputil"
	"github.com/duolink/relay-server-go/internal/model"
	"github.com/duolink/relay-server-go/internal/service"
	"github.com/duolink/relay-server-go/internal/util"
)

// RelayHandler mediates everything that happens after a pair exists. Every
// operation resolves the pair first (404), then checks membership (403),
// then delegates to the message or typing service.
type RelayHandler struct {
	pairingService *service.PairingService
	messageService *service.MessageService
	typingService  *service.TypingService
}

func NewRelayHandler(
	pairingService *service.PairingService,
	messageService *service.MessageService,
	typingService *service.TypingService,
) *RelayHandler {
	return &RelayHandler{
		pairingService: pairingService,
		messageService: messageService,
		typingService:  typingService,
	}
}

func (h *RelayHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/send", h.Send)
	r.Get("/poll", h.Poll)
	r.Post("/typing", h.Typing)
	r.Post("/read", h.Read)
	r.Post("/clear", h.Clear)
	r.Post("/unpair", h.Unpair)

	return r
}

// authorize validates the pair/device identifiers and enforces membership.
// Writes the error response itself; callers bail out when ok is false.
func (h *RelayHandler) authorize(w http.ResponseWriter, r *http.Request, pairID, deviceID string) (*model.Pair, bool) {
	if pairID == "" {
		httputil.WriteError(w, apperrors.MissingRequired("pairId"))
		return nil, false
	}
	if !util.IsValidUUID(pairID) {
		httputil.WriteError(w, apperrors.InvalidInput("pairId", "must be a UUID"))
		return nil, false
	}
	if deviceID == "" {
		httputil.WriteError(w, apperrors.MissingRequired("deviceId"))
		return nil, false
	}

	pair, err := h.pairingService.Authorize(pairID, deviceID)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeNotAuthorized {
			audit.LogFromRequest(r, audit.Event{
				Type:     audit.EventAuthFailure,
				DeviceID: deviceID,
				PairID:   pairID,
			})
		}
		httputil.WriteError(w, err)
		return nil, false
	}
	return pair, true
}

// POST /send
func (h *RelayHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PairID   string `json:"pairId"`
		DeviceID string `json:"deviceId"`
		Content  string `json:"content"`
		Kind     string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.Content == "" {
		httputil.WriteError(w, apperrors.MissingRequired("content"))
		return
	}

	pair, ok := h.authorize(w, r, req.PairID, req.DeviceID)
	if !ok {
		return
	}

	msg, err := h.messageService.Send(pair.ID, req.DeviceID, model.MessageKind(req.Kind), req.Content)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messageId": msg.ID,
		"timestamp": msg.CreatedAt.Format(time.RFC3339),
	})
}

// GET /poll?pairId&deviceId
//
// Pull with implicit acknowledgment: the caller's unread partner messages
// are marked read as a side effect, and the partner's typing state rides
// along in the response.
func (h *RelayHandler) Poll(w http.ResponseWriter, r *http.Request) {
	pairID := r.URL.Query().Get("pairId")
	deviceID := r.URL.Query().Get("deviceId")

	pair, ok := h.authorize(w, r, pairID, deviceID)
	if !ok {
		return
	}

	msgs, err := h.messageService.PollAndAcknowledge(pair.ID, deviceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	formatted := make([]map[string]any, len(msgs))
	for i, msg := range msgs {
		formatted[i] = formatMessage(msg)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages":      formatted,
		"partnerTyping": h.typingService.IsPartnerTyping(pair, deviceID),
	})
}

// POST /typing
func (h *RelayHandler) Typing(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PairID   string `json:"pairId"`
		DeviceID string `json:"deviceId"`
		IsTyping bool   `json:"isTyping"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	pair, ok := h.authorize(w, r, req.PairID, req.DeviceID)
	if !ok {
		return
	}

	h.typingService.SetTyping(pair.ID, req.DeviceID, req.IsTyping)

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// POST /read
func (h *RelayHandler) Read(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PairID     string   `json:"pairId"`
		DeviceID   string   `json:"deviceId"`
		MessageIDs []string `json:"messageIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	pair, ok := h.authorize(w, r, req.PairID, req.DeviceID)
	if !ok {
		return
	}

	if err := h.messageService.MarkRead(pair.ID, req.DeviceID, req.MessageIDs); err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// POST /clear
func (h *RelayHandler) Clear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PairID   string `json:"pairId"`
		DeviceID string `json:"deviceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	pair, ok := h.authorize(w, r, req.PairID, req.DeviceID)
	if !ok {
		return
	}

	if err := h.messageService.Clear(pair.ID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventConversationClear,
		DeviceID: req.DeviceID,
		PairID:   pair.ID,
	})

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// POST /unpair
func (h *RelayHandler) Unpair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PairID   string `json:"pairId"`
		DeviceID string `json:"deviceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	pair, ok := h.authorize(w, r, req.PairID, req.DeviceID)
	if !ok {
		return
	}

	h.pairingService.Unpair(pair.ID)

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventPairUnpair,
		DeviceID: req.DeviceID,
		PairID:   pair.ID,
	})

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
