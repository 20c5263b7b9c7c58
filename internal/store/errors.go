package store

import "errors"

// Sentinel errors returned by the stores; the service layer maps these
// onto client-facing AppErrors.
var (
	ErrCodeNotFound     = errors.New("pending code not found")
	ErrCodeAlreadyBound = errors.New("pending code already bound")
	ErrCodeSpaceFull    = errors.New("could not allocate a unique code")
	ErrDevicePaired     = errors.New("device already belongs to a pair")
	ErrConversationGone = errors.New("no conversation window for pair")
)
