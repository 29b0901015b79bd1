package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrNotConfigured is returned when no provider credentials are available.
var ErrNotConfigured = errors.New("llm provider not configured")

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config selects and authenticates the language model.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// NewModel builds the langchaingo model for cfg.
func NewModel(cfg Config) (llms.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		if cfg.APIKey == "" {
			return nil, ErrNotConfigured
		}
		opts := []openai.Option{openai.WithModel(cfg.Model), openai.WithToken(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, ErrNotConfigured
		}
		opts := []anthropic.Option{anthropic.WithModel(cfg.Model), anthropic.WithToken(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(opts...)
	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Model), ollama.WithFormat("json")}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// completeJSON sends one system + user exchange asking for a JSON answer and
// returns the JSON text with any markdown fence removed.
func completeJSON(ctx context.Context, model llms.Model, timeout time.Duration, system, user string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	resp, err := model.GenerateContent(ctx, messages, llms.WithJSONMode(), llms.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("llm returned no choices")
	}
	text := stripFences(resp.Choices[0].Content)
	if text == "" {
		return "", errors.New("llm returned an empty answer")
	}
	return text, nil
}

var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}
