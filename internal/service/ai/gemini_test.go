package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestContentsRoundTripKeepsRoles(t *testing.T) {
	messages := []*schema.Message{
		schema.SystemMessage("ignored"),
		schema.UserMessage("prime"),
		schema.AssistantMessage("ok", nil),
	}

	contents := toContents(messages)
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)

	back := fromContents(contents)
	require.Len(t, back, 2)
	assert.Equal(t, schema.User, back[0].Role)
	assert.Equal(t, "prime", back[0].Content)
	assert.Equal(t, schema.Assistant, back[1].Role)
	assert.Equal(t, "ok", back[1].Content)
}

func TestFromContentsJoinsParts(t *testing.T) {
	contents := []*genai.Content{
		{Role: "model", Parts: []*genai.Part{{Text: "Hi"}, nil, {Text: " there"}}},
		{Role: "tool", Parts: []*genai.Part{{Text: "skip"}}},
		nil,
	}

	messages := fromContents(contents)
	require.Len(t, messages, 1)
	assert.Equal(t, "Hi there", messages[0].Content)
}

func TestFromContentsMergesStreamedChunks(t *testing.T) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: "hello"}}},
		{Role: "model", Parts: []*genai.Part{{Text: "Hi"}}},
		{Role: "model", Parts: []*genai.Part{{Text: ""}}},
		{Role: "model", Parts: []*genai.Part{{Text: " there"}}},
		{Role: "user", Parts: []*genai.Part{{Text: "again"}}},
	}

	messages := fromContents(contents)
	require.Len(t, messages, 3)
	assert.Equal(t, "Hi there", messages[1].Content)
	assert.Equal(t, "again", messages[2].Content)
}

func geminiCandidate(text string, finished bool) map[string]any {
	candidate := map[string]any{
		"content": map[string]any{
			"role":  "model",
			"parts": []map[string]any{{"text": text}},
		},
	}
	if finished {
		candidate["finishReason"] = "STOP"
	}
	return map[string]any{"candidates": []map[string]any{candidate}}
}

// fakeGemini serves generateContent and streamGenerateContent like the
// Gemini API does. A non-zero failStatus answers every call with an error.
type fakeGemini struct {
	reply      string
	fragments  []string
	failStatus int
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.failStatus != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.failStatus)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend exploded","status":"INTERNAL"}}`))
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, ":streamGenerateContent"):
		w.Header().Set("Content-Type", "text/event-stream")
		for i, fragment := range f.fragments {
			data, _ := json.Marshal(geminiCandidate(fragment, i == len(f.fragments)-1))
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
	case strings.HasSuffix(r.URL.Path, ":generateContent"):
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geminiCandidate(f.reply, true))
	default:
		http.NotFound(w, r)
	}
}

func newTestGeminiBackend(t *testing.T, fake *fakeGemini) *GeminiBackend {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	backend, err := NewGeminiBackend(context.Background(), "test-key", "gemini-test", GeminiOptions{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return backend
}

func TestGeminiConversationPrimeAndStream(t *testing.T) {
	fake := &fakeGemini{reply: "ready", fragments: []string{"Hi", "", " there", "!"}}
	backend := newTestGeminiBackend(t, fake)
	assert.Equal(t, "gemini/gemini-test", backend.Name())

	conv, err := backend.Start(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, conv.History())

	primed, err := conv.Send(context.Background(), "be a teacher")
	require.NoError(t, err)
	assert.Equal(t, "ready", primed.Content)
	require.Len(t, conv.History(), 2)

	reader, err := conv.Stream(context.Background(), "hello")
	require.NoError(t, err)
	defer reader.Close()

	var fragments []string
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		fragments = append(fragments, chunk.Content)
	}
	assert.Equal(t, []string{"Hi", "", " there", "!"}, fragments)

	history := conv.History()
	require.Len(t, history, 4)
	assert.Equal(t, schema.User, history[2].Role)
	assert.Equal(t, "hello", history[2].Content)
	assert.Equal(t, schema.Assistant, history[3].Role)
	assert.Equal(t, "Hi there!", history[3].Content)
}

func TestGeminiConversationServerError(t *testing.T) {
	backend := newTestGeminiBackend(t, &fakeGemini{failStatus: http.StatusInternalServerError})

	conv, err := backend.Start(context.Background(), nil)
	require.NoError(t, err)

	_, err = conv.Send(context.Background(), "prime")
	require.Error(t, err)

	reader, err := conv.Stream(context.Background(), "hello")
	require.NoError(t, err)
	_, err = drain(t, reader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend exploded")
}
