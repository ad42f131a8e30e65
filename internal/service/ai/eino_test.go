package ai

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedModel struct {
	fragments []string
	midErr    error
	streamErr error
}

func (m *scriptedModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	return schema.AssistantMessage(strings.Join(m.fragments, ""), nil), nil
}

func (m *scriptedModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	reader, writer := schema.Pipe[*schema.Message](len(m.fragments) + 1)
	for _, fragment := range m.fragments {
		writer.Send(schema.AssistantMessage(fragment, nil), nil)
	}
	if m.midErr != nil {
		writer.Send(nil, m.midErr)
	}
	writer.Close()
	return reader, nil
}

func (m *scriptedModel) BindTools(_ []*schema.ToolInfo) error { return nil }

func drain(t *testing.T, reader *schema.StreamReader[*schema.Message]) (string, error) {
	t.Helper()
	defer reader.Close()

	var builder strings.Builder
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			return builder.String(), nil
		}
		if err != nil {
			return builder.String(), err
		}
		builder.WriteString(chunk.Content)
	}
}

func newConversation(t *testing.T, chatModel model.BaseChatModel) Conversation {
	t.Helper()
	ctx := context.Background()
	backend, err := NewEinoBackend(ctx, "test", chatModel)
	require.NoError(t, err)
	conv, err := backend.Start(ctx, nil)
	require.NoError(t, err)
	return conv
}

func TestEinoConversationSendRecordsHistory(t *testing.T) {
	conv := newConversation(t, EchoModel{})
	require.Empty(t, conv.History())

	reply, err := conv.Send(context.Background(), "prime me")
	require.NoError(t, err)
	assert.Equal(t, "prime me", reply.Content)

	history := conv.History()
	require.Len(t, history, 2)
	assert.Equal(t, schema.User, history[0].Role)
	assert.Equal(t, schema.Assistant, history[1].Role)
}

func TestEinoConversationStreamConcatenates(t *testing.T) {
	conv := newConversation(t, &scriptedModel{fragments: []string{"Hi", "", " there", "!"}})

	reader, err := conv.Stream(context.Background(), "hello")
	require.NoError(t, err)

	text, err := drain(t, reader)
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", text)

	history := conv.History()
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "Hi there!", history[1].Content)
}

func TestEinoConversationStreamFailureLeavesHistory(t *testing.T) {
	boom := errors.New("quota exceeded")
	conv := newConversation(t, &scriptedModel{fragments: []string{"partial"}, midErr: boom})

	reader, err := conv.Stream(context.Background(), "hello")
	require.NoError(t, err)

	_, err = drain(t, reader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, conv.History())
}

func TestEinoConversationSendFailure(t *testing.T) {
	conv := newConversation(t, &scriptedModel{streamErr: errors.New("network down")})

	_, err := conv.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Empty(t, conv.History())
}

func TestEinoBackendSeedsHistory(t *testing.T) {
	ctx := context.Background()
	backend, err := NewEinoBackend(ctx, "echo", EchoModel{})
	require.NoError(t, err)

	conv, err := backend.Start(ctx, []*schema.Message{schema.UserMessage("a"), schema.AssistantMessage("b", nil)})
	require.NoError(t, err)
	assert.Len(t, conv.History(), 2)
	assert.Equal(t, "echo", backend.Name())
}

func TestNewEinoBackendRequiresModel(t *testing.T) {
	_, err := NewEinoBackend(context.Background(), "none", nil)
	assert.Error(t, err)
}

func TestEchoFragments(t *testing.T) {
	assert.Equal(t, []string{"hello", " big", " world"}, echoFragments("  hello big\tworld "))
	assert.Empty(t, echoFragments("   "))
}
