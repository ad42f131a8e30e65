// Package ui describes the rendering surface the session controller draws on
// and the hosts that implement it: a recorder for full page renders and an
// event host for streaming transports.
package ui

import "github.com/zhouzirui/cs-buddy/internal/model/chat"

// Host is the UI surface of one interaction.
type Host interface {
	// DisplayMessage shows a finished message block labelled by role.
	DisplayMessage(role chat.Role, text string)
	// Placeholder opens an empty message block that is filled in later.
	Placeholder(role chat.Role) Placeholder
	// ErrorBanner shows a transient error outside the transcript.
	ErrorBanner(text string)
}

// Placeholder is a message block whose content is replaced on each update.
type Placeholder interface {
	Update(text string)
}

// Cursor is appended to a reply while it is still streaming.
const Cursor = "▌"
