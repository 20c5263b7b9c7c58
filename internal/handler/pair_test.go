package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duolink/relay-server-go/internal/config"
	"github.com/duolink/relay-server-go/internal/service"
	"github.com/duolink/relay-server-go/internal/store"
)

func newTestEnv(t *testing.T) (*PairHandler, *RelayHandler) {
	t.Helper()

	codes := store.NewCodeStore(config.CodeBindGrace, config.MaxCodeAttempts)
	pairs := store.NewPairStore()
	messages := store.NewMessageStore(config.MaxMessagesPerPair)
	typing := store.NewTypingStore(config.TypingWindow)

	pairingService := service.NewPairingService(codes, pairs, messages, typing, 7*time.Minute)
	messageService := service.NewMessageService(messages, config.MaxContentRunes)
	typingService := service.NewTypingService(typing)

	return NewPairHandler(pairingService),
		NewRelayHandler(pairingService, messageService, typingService)
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body map[string]any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func getJSON(t *testing.T, h http.HandlerFunc, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

// pairUp walks two devices through the full exchange and returns the pair id.
func pairUp(t *testing.T, pairHandler *PairHandler, ownerID, joinerID string) string {
	t.Helper()

	rec, body := postJSON(t, pairHandler.Generate, "/pair/generate", map[string]any{"deviceId": ownerID})
	require.Equal(t, http.StatusOK, rec.Code)
	code := body["code"].(string)

	rec, body = postJSON(t, pairHandler.Join, "/pair/join", map[string]any{"deviceId": joinerID, "code": code})
	require.Equal(t, http.StatusOK, rec.Code)
	return body["pairId"].(string)
}

func TestPairHandlerGenerate(t *testing.T) {
	t.Run("returns a 4-digit code and expiry", func(t *testing.T) {
		pairHandler, _ := newTestEnv(t)

		rec, body := postJSON(t, pairHandler.Generate, "/pair/generate", map[string]any{"deviceId": "device-a"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{3}$`), body["code"])

		expiresAt, err := time.Parse(time.RFC3339, body["expiresAt"].(string))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(7*time.Minute), expiresAt, 2*time.Second)
	})

	t.Run("returns 400 without deviceId", func(t *testing.T) {
		pairHandler, _ := newTestEnv(t)

		rec, body := postJSON(t, pairHandler.Generate, "/pair/generate", map[string]any{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, body["error"])
	})

	t.Run("returns 400 for an already paired device", func(t *testing.T) {
		pairHandler, _ := newTestEnv(t)
		pairUp(t, pairHandler, "device-a", "device-b")

		rec, _ := postJSON(t, pairHandler.Generate, "/pair/generate", map[string]any{"deviceId": "device-a"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPairHandlerJoin(t *testing.T) {
	t.Run("both devices learn each other's identity", func(t *testing.T) {
		pairHandler, _ := newTestEnv(t)

		rec, body := postJSON(t, pairHandler.Generate, "/pair/generate", map[string]any{"deviceId": "device-a"})
		require.Equal(t, http.StatusOK, rec.Code)
		code := body["code"].(string)

		rec, body = postJSON(t, pairHandler.Join, "/pair/join", map[string]any{"deviceId": "device-b", "code": code})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, body["pairId"])
		assert.Equal(t, "device-b", body["deviceId"])
		assert.Equal(t, "device-a", body["partnerDeviceId"])

		rec, body = getJSON(t, pairHandler.Status, "/pair/status?deviceId=device-a&code="+code)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "paired", body["status"])
		assert.Equal(t, "device-b", body["partnerDeviceId"])
	})

	t.Run("returns 400 on self-pairing", func(t *testing.T) {
		pairHandler, _ := newTestEnv(t)

		rec, body := postJSON(t, pairHandler.Generate, "/pair/generate", map[string]any{"deviceId": "device-a"})
		require.Equal(t, http.StatusOK, rec.Code)
		code := body["code"].(string)

		rec, _ = postJSON(t, pairHandler.Join, "/pair/join", map[string]any{"deviceId": "device-a", "code": code})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 400 on a malformed code", func(t *testing.T) {
		pairHandler, _ := newTestEnv(t)

		rec, _ := postJSON(t, pairHandler.Join, "/pair/join", map[string]any{"deviceId": "device-b", "code": "12AB"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 404 on an unknown code", func(t *testing.T) {
		pairHandler, _ := newTestEnv(t)

		rec, _ := postJSON(t, pairHandler.Join, "/pair/join", map[string]any{"deviceId": "device-b", "code": "4821"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPairHandlerStatus(t *testing.T) {
	t.Run("reports pending before the exchange", func(t *testing.T) {
		pairHandler, _ := newTestEnv(t)

		rec, body := postJSON(t, pairHandler.Generate, "/pair/generate", map[string]any{"deviceId": "device-a"})
		require.Equal(t, http.StatusOK, rec.Code)
		code := body["code"].(string)

		rec, body = getJSON(t, pairHandler.Status, "/pair/status?deviceId=device-a&code="+code)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pending", body["status"])
	})

	t.Run("returns 403 for a device that is not the owner", func(t *testing.T) {
		pairHandler, _ := newTestEnv(t)

		rec, body := postJSON(t, pairHandler.Generate, "/pair/generate", map[string]any{"deviceId": "device-a"})
		require.Equal(t, http.StatusOK, rec.Code)
		code := body["code"].(string)

		rec, _ = getJSON(t, pairHandler.Status, "/pair/status?deviceId=device-x&code="+code)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("returns 404 for an unknown code", func(t *testing.T) {
		pairHandler, _ := newTestEnv(t)

		rec, _ := getJSON(t, pairHandler.Status, "/pair/status?deviceId=device-a&code=4821")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
