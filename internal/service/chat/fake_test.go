package chat

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/cs-buddy/internal/service/ai"
)

type fakeBackend struct {
	starts    int
	startErr  error
	sendErr   error
	streamErr error
	midErr    error
	fragments []string
	primed    []string
	last      *fakeConversation
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Start(_ context.Context, seed []*schema.Message) (ai.Conversation, error) {
	b.starts++
	if b.startErr != nil {
		return nil, b.startErr
	}
	b.last = &fakeConversation{backend: b, history: append([]*schema.Message(nil), seed...)}
	return b.last, nil
}

type fakeConversation struct {
	backend *fakeBackend
	history []*schema.Message
}

func (c *fakeConversation) History() []*schema.Message {
	return append([]*schema.Message(nil), c.history...)
}

func (c *fakeConversation) Send(_ context.Context, text string) (*schema.Message, error) {
	if c.backend.sendErr != nil {
		return nil, c.backend.sendErr
	}
	c.backend.primed = append(c.backend.primed, text)
	reply := schema.AssistantMessage("ok", nil)
	c.history = append(c.history, schema.UserMessage(text), reply)
	return reply, nil
}

func (c *fakeConversation) Stream(_ context.Context, text string) (*schema.StreamReader[*schema.Message], error) {
	if c.backend.streamErr != nil {
		return nil, c.backend.streamErr
	}
	fragments := c.backend.fragments
	reader, writer := schema.Pipe[*schema.Message](len(fragments) + 1)
	var reply string
	for _, fragment := range fragments {
		reply += fragment
		writer.Send(schema.AssistantMessage(fragment, nil), nil)
	}
	if c.backend.midErr != nil {
		writer.Send(nil, c.backend.midErr)
	} else {
		c.history = append(c.history, schema.UserMessage(text), schema.AssistantMessage(reply, nil))
	}
	writer.Close()
	return reader, nil
}

// forget simulates the backend pruning the conversation state.
func (c *fakeConversation) forget() {
	c.history = nil
}

var errBackend = errors.New("backend exploded")
