package ai

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// The genai dependency starts an opencensus stats worker at init.
var ignoreStatsWorker = goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start")

func TestRelayStreamReportsReplyBeforeEOF(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreStatsWorker)

	upstream := schema.StreamReaderFromArray([]*schema.Message{
		schema.AssistantMessage("a", nil),
		nil,
		schema.AssistantMessage("b", nil),
	})

	var completed *schema.Message
	text, err := drain(t, relayStream(upstream, func(reply *schema.Message) {
		completed = reply
	}))
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
	require.NotNil(t, completed)
	assert.Equal(t, "ab", completed.Content)
}

func TestRelayStreamEmptyUpstream(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreStatsWorker)

	var completed *schema.Message
	text, err := drain(t, relayStream(schema.StreamReaderFromArray([]*schema.Message{}), func(reply *schema.Message) {
		completed = reply
	}))
	require.NoError(t, err)
	assert.Empty(t, text)
	require.NotNil(t, completed)
	assert.Empty(t, completed.Content)
}

func TestRelayStreamConsumerCloseSkipsCompletion(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreStatsWorker)

	chunks := make([]*schema.Message, 0, 64)
	for i := 0; i < 64; i++ {
		chunks = append(chunks, schema.AssistantMessage("x", nil))
	}

	var called atomic.Bool
	reader := relayStream(schema.StreamReaderFromArray(chunks), func(*schema.Message) {
		called.Store(true)
	})
	_, err := reader.Recv()
	require.NoError(t, err)
	reader.Close()

	assert.Eventually(t, func() bool { return goleak.Find(ignoreStatsWorker) == nil }, time.Second, 10*time.Millisecond)
	assert.False(t, called.Load())
}

func TestHistoryRecordAndSnapshot(t *testing.T) {
	h := newHistory(nil)
	h.record("q", schema.AssistantMessage("a", nil))

	snap := h.snapshot()
	require.Len(t, snap, 2)
	snap[0] = nil
	assert.NotNil(t, h.snapshot()[0])
}
