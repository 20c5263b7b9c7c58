package handler

import (
	"net/http"
	"time"

	"github.com/duolink/relay-server-go/internal/httputil"
	"github.com/duolink/relay-server-go/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func formatMessage(msg model.Message) map[string]any {
	return map[string]any{
		"id":        msg.ID,
		"senderId":  msg.SenderID,
		"kind":      string(msg.Kind),
		"content":   msg.Content,
		"timestamp": msg.CreatedAt.Format(time.RFC3339),
		"read":      msg.Read,
	}
}
