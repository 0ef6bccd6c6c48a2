// internal/llm/bedrock.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"green-genie/internal/common/logger"
	"green-genie/internal/common/metrics"
)

var (
	ErrGenerationTimeout = errors.New("LLM_TIMEOUT")
	ErrGenerationFailed  = errors.New("LLM_INVOKE_FAILED")
)

// fallbackText is returned when the model answers with no usable text content.
const fallbackText = "No valid text content was returned by the model."

// Invoker submits a JSON payload to a Bedrock model and returns the raw
// response body. *aws.BedrockClient satisfies it; tests substitute a stub.
type Invoker interface {
	InvokeModel(ctx context.Context, modelID string, payload []byte) ([]byte, error)
}

type Config struct {
	ModelID     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// Generator produces explanation text via Bedrock using the Anthropic
// messages schema.
type Generator struct {
	config  Config
	invoker Invoker
	logger  logger.Logger
}

func NewGenerator(cfg Config, invoker Invoker, log logger.Logger) *Generator {
	return &Generator{
		config:  cfg,
		invoker: invoker,
		logger: log.With(map[string]interface{}{
			"component": "llm",
			"model":     cfg.ModelID,
		}),
	}
}

// --- Request/response wire types (Anthropic messages schema on Bedrock) ---

type messageRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	Messages         []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
	Output  struct {
		Message struct {
			Content []contentBlock `json:"content"`
		} `json:"message"`
	} `json:"output"`
}

// Generate invokes the model with the given prompt and returns the generated
// text. Attempts are bounded with exponential backoff; a context deadline
// maps to ErrGenerationTimeout.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(messageRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        g.config.MaxTokens,
		Temperature:      g.config.Temperature,
		Messages: []message{
			{Role: "user", Content: []contentBlock{{Type: "text", Text: prompt}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	start := time.Now()

	var body []byte
	var lastErr error
	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.LLMCallsTotal.WithLabelValues("timeout").Inc()
				return "", ErrGenerationTimeout
			}
		}

		body, lastErr = g.invoker.InvokeModel(ctx, g.config.ModelID, payload)
		if lastErr == nil {
			break
		}

		if ctx.Err() != nil {
			metrics.LLMCallsTotal.WithLabelValues("timeout").Inc()
			return "", ErrGenerationTimeout
		}
	}

	metrics.LLMCallDuration.WithLabelValues(g.config.ModelID).Observe(time.Since(start).Seconds())

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			metrics.LLMCallsTotal.WithLabelValues("timeout").Inc()
			return "", ErrGenerationTimeout
		}
		metrics.LLMCallsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
	}

	text, err := extractText(body)
	if err != nil {
		metrics.LLMCallsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if text == "" {
		g.logger.Warn("model returned no text content", nil)
		text = fallbackText
	}

	metrics.LLMCallsTotal.WithLabelValues("success").Inc()
	return text, nil
}

// extractText handles both response shapes Bedrock Claude models produce:
// a top-level content list (invoke_model) and the converse-style
// output.message.content list. Text parts are joined and trimmed.
func extractText(body []byte) (string, error) {
	var resp messageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode response: %v", err)
	}

	if text := joinTextParts(resp.Content); text != "" {
		return text, nil
	}
	return joinTextParts(resp.Output.Message.Content), nil
}

func joinTextParts(blocks []contentBlock) string {
	var parts []string
	for _, b := range blocks {
		if b.Type != "text" {
			continue
		}
		if t := strings.TrimSpace(b.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
