package chat

import (
	"sync"
	"time"

	"github.com/zhouzirui/cs-buddy/internal/model/chat"
	"github.com/zhouzirui/cs-buddy/internal/service/ai"
)

// Session is the state of one logical user interaction stream: the visible
// transcript and the backend conversation it mirrors.
type Session struct {
	ID        string
	CreatedAt time.Time

	// mu serializes interactions on this session.
	mu           sync.Mutex
	lastActive   time.Time
	transcript   *chat.Transcript
	conversation ai.Conversation
}

// NewSession returns an uninitialized session.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		CreatedAt:  now,
		lastActive: now,
		transcript: chat.NewTranscript(),
	}
}

// Transcript returns a copy of the visible turns.
func (s *Session) Transcript() []chat.Turn {
	return s.transcript.Turns()
}

// Primed reports whether the session holds a backend conversation.
func (s *Session) Primed() bool {
	return s.conversation != nil
}

// Conversation returns the backend handle, nil before priming.
func (s *Session) Conversation() ai.Conversation {
	return s.conversation
}
