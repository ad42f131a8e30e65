package ui

import (
	"github.com/zhouzirui/cs-buddy/internal/model/chat"
)

// EventType names a UI event sent over a streaming transport.
type EventType string

const (
	EventStart       EventType = "start"
	EventMessage     EventType = "message"
	EventPlaceholder EventType = "placeholder"
	EventDelta       EventType = "delta"
	EventError       EventType = "error"
	EventReset       EventType = "reset"
	EventEnd         EventType = "end"
)

// Event is the wire form of a host call.
type Event struct {
	Event     EventType `json:"event"`
	SessionID string    `json:"sessionId,omitempty"`
	Role      chat.Role `json:"role,omitempty"`
	Content   string    `json:"content,omitempty"`
	HTML      string    `json:"html,omitempty"`
	Error     string    `json:"error,omitempty"`
	Finished  bool      `json:"finished,omitempty"`
}

// EventHost turns host calls into events handed to emit.
type EventHost struct {
	sessionID string
	md        *Markdown
	emit      func(Event)
}

// NewEventHost returns a host emitting events for sessionID. md may be nil,
// in which case events carry no HTML.
func NewEventHost(sessionID string, md *Markdown, emit func(Event)) *EventHost {
	return &EventHost{sessionID: sessionID, md: md, emit: emit}
}

func (h *EventHost) DisplayMessage(role chat.Role, text string) {
	h.emit(h.event(EventMessage, role, text))
}

func (h *EventHost) Placeholder(role chat.Role) Placeholder {
	h.emit(Event{Event: EventPlaceholder, SessionID: h.sessionID, Role: role})
	return &eventPlaceholder{host: h, role: role}
}

func (h *EventHost) ErrorBanner(text string) {
	h.emit(Event{Event: EventError, SessionID: h.sessionID, Error: text})
}

// Emit sends a lifecycle event such as start, reset or end.
func (h *EventHost) Emit(kind EventType) {
	h.emit(Event{Event: kind, SessionID: h.sessionID, Finished: kind == EventEnd})
}

func (h *EventHost) event(kind EventType, role chat.Role, text string) Event {
	evt := Event{Event: kind, SessionID: h.sessionID, Role: role, Content: text}
	if h.md != nil {
		evt.HTML = string(h.md.Render(text))
	}
	return evt
}

type eventPlaceholder struct {
	host *EventHost
	role chat.Role
}

func (p *eventPlaceholder) Update(text string) {
	p.host.emit(p.host.event(EventDelta, p.role, text))
}
