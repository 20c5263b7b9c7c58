package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/duolink/relay-server-go/internal/audit"
	apperrors "github.com/duolink/relay-server-go/internal/errors"
	"github.com/duolink/relay-server-go/internal/httputil"
	"github.com/duolink/relay-server-go/internal/service"
	"github.com/duolink/relay-server-go/internal/util"
)

type PairHandler struct {
	pairingService *service.PairingService
}

func NewPairHandler(pairingService *service.PairingService) *PairHandler {
	return &PairHandler{
		pairingService: pairingService,
	}
}

func (h *PairHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/generate", h.Generate)
	r.Post("/join", h.Join)
	r.Get("/status", h.Status)

	return r
}

// POST /pair/generate
func (h *PairHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID string `json:"deviceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.DeviceID == "" {
		httputil.WriteError(w, apperrors.MissingRequired("deviceId"))
		return
	}
	if !util.IsValidDeviceID(req.DeviceID) {
		httputil.WriteError(w, apperrors.InvalidInput("deviceId", "too long"))
		return
	}

	pc, err := h.pairingService.GenerateCode(req.DeviceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventCodeGenerate,
		DeviceID: req.DeviceID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"code":      pc.Code,
		"expiresAt": pc.ExpiresAt.Format(time.RFC3339),
	})
}

// POST /pair/join
func (h *PairHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID string `json:"deviceId"`
		Code     string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.DeviceID == "" {
		httputil.WriteError(w, apperrors.MissingRequired("deviceId"))
		return
	}
	if req.Code == "" {
		httputil.WriteError(w, apperrors.MissingRequired("code"))
		return
	}
	if !util.IsValidPairingCode(req.Code) {
		httputil.WriteError(w, apperrors.InvalidInput("code", "must be 4 decimal digits"))
		return
	}

	result, err := h.pairingService.Join(req.Code, req.DeviceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventPairJoin,
		DeviceID: req.DeviceID,
		PairID:   result.Pair.ID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"pairId":          result.Pair.ID,
		"deviceId":        req.DeviceID,
		"partnerDeviceId": result.OwnerDeviceID,
	})
}

// GET /pair/status?deviceId&code
//
// Polled by the generating device while the join screen is open; the owner
// observes the pending→paired transition here.
func (h *PairHandler) Status(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	code := r.URL.Query().Get("code")

	if deviceID == "" {
		httputil.WriteError(w, apperrors.MissingRequired("deviceId"))
		return
	}
	if code == "" {
		httputil.WriteError(w, apperrors.MissingRequired("code"))
		return
	}
	if !util.IsValidPairingCode(code) {
		httputil.WriteError(w, apperrors.InvalidInput("code", "must be 4 decimal digits"))
		return
	}

	result, err := h.pairingService.Status(deviceID, code)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if !result.Paired {
		writeJSON(w, http.StatusOK, map[string]any{"status": "pending"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "paired",
		"pairId":          result.PairID,
		"partnerDeviceId": result.PartnerDeviceID,
	})
}
