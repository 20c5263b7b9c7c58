package store

import (
	"sync"

	"github.com/duolink/relay-server-go/internal/model"
)

// MessageStore owns the per-pair conversation windows. A window exists iff
// its pair exists: Init is called in lockstep with pair creation and
// Destroy with pair destruction. Each window is a bounded FIFO; exceeding
// the cap silently evicts from the front. Sliding-window retention, not a
// delivery guarantee.
type MessageStore struct {
	mu       sync.Mutex
	windows  map[string][]model.Message
	capacity int
}

func NewMessageStore(capacity int) *MessageStore {
	return &MessageStore{
		windows:  make(map[string][]model.Message),
		capacity: capacity,
	}
}

// Init creates an empty window for a freshly created pair.
func (s *MessageStore) Init(pairID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.windows[pairID]; !ok {
		s.windows[pairID] = make([]model.Message, 0)
	}
}

// Destroy drops the window when its pair is destroyed.
func (s *MessageStore) Destroy(pairID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, pairID)
}

// Append pushes a message onto the pair's window, evicting from the front
// once the cap is exceeded.
func (s *MessageStore) Append(pairID string, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	window, ok := s.windows[pairID]
	if !ok {
		return ErrConversationGone
	}

	window = append(window, msg)
	if over := len(window) - s.capacity; over > 0 {
		window = window[over:]
	}
	s.windows[pairID] = window
	return nil
}

// Snapshot returns a copy of the full current window, oldest first.
func (s *MessageStore) Snapshot(pairID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window, ok := s.windows[pairID]
	if !ok {
		return nil, ErrConversationGone
	}

	out := make([]model.Message, len(window))
	copy(out, window)
	return out, nil
}

// MarkRead flips read=true for every listed message the reader did not
// send. Unknown ids are ignored; re-marking is a no-op, so the call is
// idempotent. Returns how many messages actually transitioned.
func (s *MessageStore) MarkRead(pairID, readerID string, ids map[string]struct{}) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window, ok := s.windows[pairID]
	if !ok {
		return 0, ErrConversationGone
	}

	marked := 0
	for i := range window {
		if window[i].Read || window[i].SenderID == readerID {
			continue
		}
		if _, wanted := ids[window[i].ID]; wanted {
			window[i].Read = true
			marked++
		}
	}
	return marked, nil
}

// PollAndAcknowledge snapshots the window for the reader and then marks
// every unread partner message as read. The snapshot is taken before the
// acknowledgment, so the first poll after a send still reports read=false.
func (s *MessageStore) PollAndAcknowledge(pairID, readerID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window, ok := s.windows[pairID]
	if !ok {
		return nil, ErrConversationGone
	}

	out := make([]model.Message, len(window))
	copy(out, window)

	for i := range window {
		if !window[i].Read && window[i].SenderID != readerID {
			window[i].Read = true
		}
	}
	return out, nil
}

// Clear empties the window without touching the pair itself.
func (s *MessageStore) Clear(pairID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.windows[pairID]; !ok {
		return ErrConversationGone
	}
	s.windows[pairID] = make([]model.Message, 0)
	return nil
}
