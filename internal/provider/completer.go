package provider

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Message is one turn of conversation handed to the completion model.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Completion is a finished model response with the token sequence it was
// generated in, preserved for ordered replay by the streaming emitter.
type Completion struct {
	Text   string
	Tokens []string
}

// CompleterConfig configures the Ollama chat client.
type CompleterConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Retry       Policy
}

// Completer generates chat completions via Ollama.
type Completer struct {
	llm         llms.Model
	temperature float64
	maxTokens   int
	retry       Policy
}

// NewCompleter creates the completion client.
func NewCompleter(cfg CompleterConfig) (*Completer, error) {
	if cfg.Model == "" {
		cfg.Model = "llama3.1"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Temperature < 0 || cfg.Temperature > 1 {
		return nil, fmt.Errorf("temperature must be between 0 and 1")
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultPolicy()
	}

	llm, err := ollama.New(ollama.WithModel(cfg.Model), ollama.WithServerURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("initialize completer: %w", err)
	}

	return &Completer{
		llm:         llm,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		retry:       cfg.Retry,
	}, nil
}

// Generate produces a completion for the conversation, collecting the model's
// streamed chunks in generation order. The whole call sits behind the retry
// policy; nothing reaches the caller until the generation is complete, so a
// retried attempt simply resets the token buffer.
func (c *Completer) Generate(ctx context.Context, messages []Message) (Completion, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(chatMessageType(m.Role), m.Content))
	}

	var completion Completion
	err := c.retry.Do(ctx, func() error {
		completion = Completion{}
		resp, genErr := c.llm.GenerateContent(ctx, content,
			llms.WithTemperature(c.temperature),
			llms.WithMaxTokens(c.maxTokens),
			llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
				completion.Tokens = append(completion.Tokens, string(chunk))
				return nil
			}),
		)
		if genErr != nil {
			return genErr
		}
		if resp == nil || len(resp.Choices) == 0 {
			return fmt.Errorf("empty response from model")
		}
		completion.Text = resp.Choices[0].Content
		return nil
	})
	if err != nil {
		return Completion{}, fmt.Errorf("generate: %w", err)
	}
	return completion, nil
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case "system":
		return llms.ChatMessageTypeSystem
	case "assistant":
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
