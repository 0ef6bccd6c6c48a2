// internal/llm/bedrock_test.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"green-genie/internal/common/logger"
)

type stubInvoker struct {
	responses []stubResponse
	payloads  [][]byte
	calls     int
}

type stubResponse struct {
	body []byte
	err  error
}

func (s *stubInvoker) InvokeModel(_ context.Context, _ string, payload []byte) ([]byte, error) {
	s.payloads = append(s.payloads, payload)
	resp := s.responses[s.calls]
	if s.calls < len(s.responses)-1 {
		s.calls++
	}
	return resp.body, resp.err
}

func testConfig() Config {
	return Config{
		ModelID:     "anthropic.claude-3-sonnet-20240229-v1:0",
		MaxTokens:   300,
		Temperature: 0.7,
		MaxRetries:  2,
	}
}

func TestGenerate_ContentListShape(t *testing.T) {
	invoker := &stubInvoker{responses: []stubResponse{
		{body: []byte(`{"content":[{"type":"text","text":"Diversify across solar and wind."}]}`)},
	}}
	gen := NewGenerator(testConfig(), invoker, logger.NewTestLogger(t))

	out, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Diversify across solar and wind.", out)
}

func TestGenerate_ConverseOutputShape(t *testing.T) {
	invoker := &stubInvoker{responses: []stubResponse{
		{body: []byte(`{"output":{"message":{"content":[{"type":"text","text":"Consider water utilities."}]}}}`)},
	}}
	gen := NewGenerator(testConfig(), invoker, logger.NewTestLogger(t))

	out, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Consider water utilities.", out)
}

func TestGenerate_JoinsMultipleTextParts(t *testing.T) {
	invoker := &stubInvoker{responses: []stubResponse{
		{body: []byte(`{"content":[{"type":"text","text":"First."},{"type":"thinking","text":"skip"},{"type":"text","text":"Second."}]}`)},
	}}
	gen := NewGenerator(testConfig(), invoker, logger.NewTestLogger(t))

	out, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "First. Second.", out)
}

func TestGenerate_PayloadCarriesPromptAndSettings(t *testing.T) {
	invoker := &stubInvoker{responses: []stubResponse{
		{body: []byte(`{"content":[{"type":"text","text":"ok"}]}`)},
	}}
	gen := NewGenerator(testConfig(), invoker, logger.NewTestLogger(t))

	_, err := gen.Generate(context.Background(), "explain renewable energy picks")
	require.NoError(t, err)
	require.Len(t, invoker.payloads, 1)

	var req map[string]interface{}
	require.NoError(t, json.Unmarshal(invoker.payloads[0], &req))
	assert.Equal(t, "bedrock-2023-05-31", req["anthropic_version"])
	assert.Equal(t, float64(300), req["max_tokens"])
	assert.Equal(t, 0.7, req["temperature"])

	messages := req["messages"].([]interface{})
	require.Len(t, messages, 1)
	content := messages[0].(map[string]interface{})["content"].([]interface{})
	text := content[0].(map[string]interface{})["text"]
	assert.Equal(t, "explain renewable energy picks", text)
}

func TestGenerate_RetriesTransientFailure(t *testing.T) {
	invoker := &stubInvoker{responses: []stubResponse{
		{err: errors.New("throttled")},
		{body: []byte(`{"content":[{"type":"text","text":"after retry"}]}`)},
	}}
	gen := NewGenerator(testConfig(), invoker, logger.NewTestLogger(t))

	out, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "after retry", out)
	assert.Len(t, invoker.payloads, 2)
}

func TestGenerate_ExhaustedRetriesFail(t *testing.T) {
	invoker := &stubInvoker{responses: []stubResponse{
		{err: errors.New("service unavailable")},
	}}
	gen := NewGenerator(testConfig(), invoker, logger.NewTestLogger(t))

	_, err := gen.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Len(t, invoker.payloads, 3) // initial attempt plus two retries
}

func TestGenerate_TimeoutMapsToSentinel(t *testing.T) {
	invoker := &stubInvoker{responses: []stubResponse{
		{err: context.DeadlineExceeded},
	}}
	cfg := testConfig()
	cfg.Timeout = time.Millisecond
	gen := NewGenerator(cfg, invoker, logger.NewTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(5 * time.Millisecond)

	_, err := gen.Generate(ctx, "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationTimeout)
}

func TestGenerate_EmptyContentUsesFallbackText(t *testing.T) {
	invoker := &stubInvoker{responses: []stubResponse{
		{body: []byte(`{"content":[]}`)},
	}}
	gen := NewGenerator(testConfig(), invoker, logger.NewTestLogger(t))

	out, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, fallbackText, out)
}

func TestGenerate_MalformedResponse(t *testing.T) {
	invoker := &stubInvoker{responses: []stubResponse{
		{body: []byte(`not json`)},
	}}
	gen := NewGenerator(testConfig(), invoker, logger.NewTestLogger(t))

	_, err := gen.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
}
