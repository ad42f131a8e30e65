package ai

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/zhouzirui/cs-buddy/internal/model/chat"
)

// GeminiOptions tune generation for the Gemini backend.
type GeminiOptions struct {
	Temperature *float32
	TopP        *float32
	MaxTokens   int32

	// BaseURL and HTTPClient override the API endpoint and transport.
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiBackend opens conversations through the Gemini chats API. History is
// kept by the SDK chat object.
type GeminiBackend struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiBackend creates a Gemini client for model.
func NewGeminiBackend(ctx context.Context, apiKey, model string, opts GeminiOptions) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, errors.New("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GenAI client")
	}

	return &GeminiBackend{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:     opts.Temperature,
			TopP:            opts.TopP,
			MaxOutputTokens: opts.MaxTokens,
		},
	}, nil
}

// Name identifies the backend in logs.
func (b *GeminiBackend) Name() string {
	return "gemini/" + b.model
}

// Start opens a Gemini chat seeded with history.
func (b *GeminiBackend) Start(ctx context.Context, seed []*schema.Message) (Conversation, error) {
	session, err := b.client.Chats.Create(ctx, b.model, b.config, toContents(seed))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to start chat with %s", b.model)
	}
	return &geminiConversation{chat: session}, nil
}

type geminiConversation struct {
	chat *genai.Chat
}

func (c *geminiConversation) History() []*schema.Message {
	return fromContents(c.chat.History(false))
}

func (c *geminiConversation) Send(ctx context.Context, text string) (*schema.Message, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return nil, errors.Wrap(err, "GenAI send failed")
	}
	return schema.AssistantMessage(resp.Text(), nil), nil
}

func (c *geminiConversation) Stream(ctx context.Context, text string) (*schema.StreamReader[*schema.Message], error) {
	reader, writer := schema.Pipe[*schema.Message](8)

	go func() {
		defer writer.Close()
		for resp, err := range c.chat.SendMessageStream(ctx, genai.Part{Text: text}) {
			if err != nil {
				writer.Send(nil, errors.Wrap(err, "GenAI stream failed"))
				return
			}
			if resp == nil {
				continue
			}
			if closed := writer.Send(schema.AssistantMessage(resp.Text(), nil), nil); closed {
				return
			}
		}
	}()

	return reader, nil
}

func toContents(messages []*schema.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.User:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		}
	}
	return contents
}

// fromContents converts SDK history to messages. Streamed replies are stored
// by the SDK one content per chunk; consecutive contents of the same role are
// merged so every exchange yields one user and one assistant message.
func fromContents(contents []*genai.Content) []*schema.Message {
	messages := make([]*schema.Message, 0, len(contents))
	for _, content := range contents {
		if content == nil {
			continue
		}
		role, ok := chat.ParseRole(content.Role)
		if !ok {
			continue
		}

		var text strings.Builder
		for _, part := range content.Parts {
			if part != nil {
				text.WriteString(part.Text)
			}
		}

		schemaRole := schema.User
		if role == chat.RoleAssistant {
			schemaRole = schema.Assistant
		}
		if n := len(messages); n > 0 && messages[n-1].Role == schemaRole {
			messages[n-1].Content += text.String()
			continue
		}

		switch role {
		case chat.RoleUser:
			messages = append(messages, schema.UserMessage(text.String()))
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(text.String(), nil))
		}
	}
	return messages
}
