package model

import "time"

// MessageKind tags the payload variant instead of encoding it as a
// sniffable prefix inside the content string. Image messages carry a
// device-local reference; the relay never sees binary data.
type MessageKind string

const (
	MessageKindText  MessageKind = "text"
	MessageKindImage MessageKind = "image"
)

func (k MessageKind) Valid() bool {
	return k == MessageKindText || k == MessageKindImage
}

// Message is one relayed entry in a pair's bounded conversation window.
// Read flips false→true exactly once and never back.
type Message struct {
	ID        string      `json:"id"`
	SenderID  string      `json:"senderId"`
	Kind      MessageKind `json:"kind"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	Read      bool        `json:"read"`
}
