package ai

import (
	"context"
	"io"
	"sync"

	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
)

// Backend opens stateful conversations with a hosted model.
type Backend interface {
	// Start opens a conversation seeded with the given history.
	Start(ctx context.Context, history []*schema.Message) (Conversation, error)
	// Name identifies the provider and model for logs.
	Name() string
}

// Conversation is an open exchange with the model. It keeps its own history,
// independent of the transcript shown to the user. An exchange is recorded
// in History only once the reply has completed.
type Conversation interface {
	History() []*schema.Message
	Send(ctx context.Context, text string) (*schema.Message, error)
	// Stream delivers the reply as a finite, non-restartable sequence of
	// fragments. The reader ends with io.EOF; fragments may be empty.
	Stream(ctx context.Context, text string) (*schema.StreamReader[*schema.Message], error)
}

// history is the message log shared by conversations that keep it themselves.
type history struct {
	mu       sync.Mutex
	messages []*schema.Message
}

func newHistory(seed []*schema.Message) *history {
	return &history{messages: append([]*schema.Message(nil), seed...)}
}

func (h *history) snapshot() []*schema.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*schema.Message(nil), h.messages...)
}

func (h *history) record(userText string, reply *schema.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, schema.UserMessage(userText), schema.AssistantMessage(reply.Content, nil))
}

// relayStream forwards upstream fragments into a fresh reader. onComplete
// receives the concatenated reply before the consumer observes io.EOF, and is
// skipped when upstream fails or the consumer closes early.
func relayStream(upstream *schema.StreamReader[*schema.Message], onComplete func(*schema.Message)) *schema.StreamReader[*schema.Message] {
	reader, writer := schema.Pipe[*schema.Message](8)

	go func() {
		defer upstream.Close()
		defer writer.Close()

		chunks := make([]*schema.Message, 0, 8)
		for {
			chunk, err := upstream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				writer.Send(nil, err)
				return
			}
			if chunk == nil {
				continue
			}

			chunks = append(chunks, chunk)
			if closed := writer.Send(chunk, nil); closed {
				return
			}
		}

		reply := schema.AssistantMessage("", nil)
		if len(chunks) > 0 {
			merged, err := schema.ConcatMessages(chunks)
			if err != nil {
				writer.Send(nil, errors.Wrap(err, "failed to concat reply fragments"))
				return
			}
			reply = merged
		}
		if onComplete != nil {
			onComplete(reply)
		}
	}()

	return reader
}
