package config

import "time"

// HTTP server timeouts
const (
	ServerRequestTimeout  = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Pairing code allocation
const (
	// MaxCodeAttempts bounds collision retries during code generation; hitting
	// it means the pending-code table is abnormally full.
	MaxCodeAttempts = 100

	// CodeBindGrace keeps an exchanged code visible long enough for the
	// owning device's status poll to observe the paired transition.
	CodeBindGrace = 5 * time.Second
)

// Conversation window
const (
	MaxMessagesPerPair = 500
	MaxContentRunes    = 1000
)

// Typing indicator liveness window
const TypingWindow = 3 * time.Second

// Request body cap; payloads are short text or local image references.
const MaxBodyBytes = 64 << 10
