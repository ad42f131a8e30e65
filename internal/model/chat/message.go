package chat

import (
	"strings"
	"time"
)

// Role labels who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole normalizes a role label. Backends that call the assistant "model"
// are mapped to RoleAssistant.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user":
		return RoleUser, true
	case "assistant", "model":
		return RoleAssistant, true
	default:
		return "", false
	}
}

// Turn is one role-tagged message shown in the transcript.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTurn stamps a turn with the current UTC time.
func NewTurn(role Role, text string) Turn {
	return Turn{Role: role, Text: text, CreatedAt: time.Now().UTC()}
}
