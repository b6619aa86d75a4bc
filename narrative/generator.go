package narrative

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"codedrip/config"
	"codedrip/logger"
	"codedrip/models"
)

// Generator turns a prompt into text using a generative-text service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderError is a failed call to a generative-text provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{models.ErrRemoteAPI, e.Err}
}

const (
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultOllamaModel    = "llama3"
	defaultOllamaURL      = "http://localhost:11434"
	defaultMaxTokens      = 4096
)

// NewGenerator builds the generator for cfg.Provider. An empty provider means Gemini.
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	provider := strings.ToLower(cfg.Provider)
	logger.Info("Initializing generative-text provider",
		zap.String("provider", provider),
		zap.String("model", cfg.Model))

	switch provider {
	case "", "gemini":
		return newGemini(ctx, cfg)
	case "openai":
		return newOpenAI(cfg), nil
	case "anthropic":
		return newAnthropic(cfg), nil
	case "ollama":
		return newOllama(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func newGemini(ctx context.Context, cfg config.LLMConfig) (*geminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini client error: %w", err)
	}
	return &geminiGenerator{client: client, model: orDefault(cfg.Model, defaultGeminiModel)}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &ProviderError{Provider: "Gemini", Err: err}
	}
	return resp.Text(), nil
}

// openAIGenerator also serves OpenAI-compatible endpoints through BaseURL.
type openAIGenerator struct {
	client *openai.Client
	model  string
}

func newOpenAI(cfg config.LLMConfig) *openAIGenerator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &openAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  orDefault(cfg.Model, defaultOpenAIModel),
	}
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", &ProviderError{Provider: "OpenAI", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

type anthropicGenerator struct {
	client anthropic.Client
	model  string
}

func newAnthropic(cfg config.LLMConfig) *anthropicGenerator {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicGenerator{
		client: anthropic.NewClient(opts...),
		model:  orDefault(cfg.Model, defaultAnthropicModel),
	}
}

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", &ProviderError{Provider: "Anthropic", Err: err}
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	return content.String(), nil
}

type ollamaGenerator struct {
	client *api.Client
	model  string
}

func newOllama(cfg config.LLMConfig) (*ollamaGenerator, error) {
	u, err := url.Parse(orDefault(cfg.BaseURL, defaultOllamaURL))
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	return &ollamaGenerator{
		client: api.NewClient(u, http.DefaultClient),
		model:  orDefault(cfg.Model, defaultOllamaModel),
	}, nil
}

func (g *ollamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var content strings.Builder
	err := g.client.Chat(ctx, &api.ChatRequest{
		Model: g.model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", &ProviderError{Provider: "Ollama", Err: err}
	}
	return content.String(), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
