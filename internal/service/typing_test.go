package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/duolink/relay-server-go/internal/model"
	"github.com/duolink/relay-server-go/internal/store"
)

func TestIsPartnerTyping(t *testing.T) {
	pair := &model.Pair{ID: "pair-1", DeviceA: "device-a", DeviceB: "device-b"}

	t.Run("true right after the partner starts typing", func(t *testing.T) {
		s := NewTypingService(store.NewTypingStore(3 * time.Second))

		s.SetTyping(pair.ID, "device-b", true)

		assert.True(t, s.IsPartnerTyping(pair, "device-a"))
		assert.False(t, s.IsPartnerTyping(pair, "device-b"), "own mark is not partner typing")
	})

	t.Run("false after explicit cancellation", func(t *testing.T) {
		s := NewTypingService(store.NewTypingStore(3 * time.Second))

		s.SetTyping(pair.ID, "device-b", true)
		s.SetTyping(pair.ID, "device-b", false)

		assert.False(t, s.IsPartnerTyping(pair, "device-a"))
	})

	t.Run("false once the liveness window elapses", func(t *testing.T) {
		s := NewTypingService(store.NewTypingStore(30 * time.Millisecond))

		s.SetTyping(pair.ID, "device-b", true)
		time.Sleep(50 * time.Millisecond)

		assert.False(t, s.IsPartnerTyping(pair, "device-a"))
	})

	t.Run("false for a non-member viewer", func(t *testing.T) {
		s := NewTypingService(store.NewTypingStore(3 * time.Second))

		s.SetTyping(pair.ID, "device-b", true)

		assert.False(t, s.IsPartnerTyping(pair, "device-x"))
	})
}
