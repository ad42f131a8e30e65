package ai

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// EinoBackend runs conversations through an eino chain: a chat template that
// replays the conversation history followed by the chat model.
type EinoBackend struct {
	name  string
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewEinoBackend compiles the conversation chain around chatModel.
func NewEinoBackend(ctx context.Context, name string, chatModel model.BaseChatModel) (*EinoBackend, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile chat chain")
	}

	return &EinoBackend{name: name, chain: runnable}, nil
}

// Name identifies the backend in logs.
func (b *EinoBackend) Name() string {
	return b.name
}

// Start opens a conversation seeded with history.
func (b *EinoBackend) Start(_ context.Context, seed []*schema.Message) (Conversation, error) {
	return &einoConversation{chain: b.chain, history: newHistory(seed)}, nil
}

type einoConversation struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	history *history
}

func (c *einoConversation) History() []*schema.Message {
	return c.history.snapshot()
}

func (c *einoConversation) Send(ctx context.Context, text string) (*schema.Message, error) {
	response, err := c.chain.Invoke(ctx, c.buildChainInput(text))
	if err != nil {
		return nil, errors.Wrap(err, "failed to run AI chain")
	}
	if response == nil {
		return nil, errors.New("AI chain returned no message")
	}

	c.history.record(text, response)
	log.Debug().Str("component", "ai").Int("length", len(response.Content)).Msg("generated reply")
	return response, nil
}

func (c *einoConversation) Stream(ctx context.Context, text string) (*schema.StreamReader[*schema.Message], error) {
	upstream, err := c.chain.Stream(ctx, c.buildChainInput(text))
	if err != nil {
		return nil, errors.Wrap(err, "failed to stream AI chain output")
	}

	return relayStream(upstream, func(reply *schema.Message) {
		c.history.record(text, reply)
	}), nil
}

func (c *einoConversation) buildChainInput(text string) map[string]any {
	return map[string]any{
		"history": c.history.snapshot(),
		"query":   text,
	}
}
