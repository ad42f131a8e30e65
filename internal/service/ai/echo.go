package ai

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EchoModel is an offline chat model that answers with the latest user
// message, streamed word by word. It lets the widget run without credentials.
type EchoModel struct{}

var _ model.ChatModel = EchoModel{}

func (EchoModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage(lastUserText(input), nil), nil
}

func (EchoModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	fragments := echoFragments(lastUserText(input))
	chunks := make([]*schema.Message, 0, len(fragments))
	for _, fragment := range fragments {
		chunks = append(chunks, schema.AssistantMessage(fragment, nil))
	}
	return schema.StreamReaderFromArray(chunks), nil
}

func (EchoModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

func lastUserText(input []*schema.Message) string {
	for i := len(input) - 1; i >= 0; i-- {
		if input[i] != nil && input[i].Role == schema.User {
			return input[i].Content
		}
	}
	return ""
}

// echoFragments splits text on words, keeping the separating space on the
// following fragment so the fragments concatenate back to the normalized text.
func echoFragments(text string) []string {
	words := strings.Fields(text)
	fragments := make([]string, 0, len(words))
	for i, word := range words {
		if i > 0 {
			word = " " + word
		}
		fragments = append(fragments, word)
	}
	return fragments
}
