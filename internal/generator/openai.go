package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/JesusVicken/brain-school/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	// GroqBaseURL is Groq's OpenAI-compatible endpoint.
	GroqBaseURL = "https://api.groq.com/openai/v1"

	defaultOpenAIModel = openai.GPT3Dot5Turbo
	defaultGroqModel   = "llama-3.1-8b-instant"
)

// OpenAICompatible talks to any chat-completion endpoint that speaks the
// OpenAI wire format; Groq is selected by overriding the base URL.
type OpenAICompatible struct {
	client *openai.Client
	model  string
	name   string
	log    logrus.FieldLogger
}

func NewOpenAI(apiKey, model string, log logrus.FieldLogger) *OpenAICompatible {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAICompatible{
		client: openai.NewClient(apiKey),
		model:  model,
		name:   "openai",
		log:    log,
	}
}

func NewGroq(apiKey, model, baseURL string, log logrus.FieldLogger) *OpenAICompatible {
	if model == "" {
		model = defaultGroqModel
	}
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAICompatible{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		name:   "groq",
		log:    log,
	}
}

func (p *OpenAICompatible) Name() string { return p.name }

func (p *OpenAICompatible) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.3,
		MaxTokens:   2048,
		TopP:        1,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response carries no choices", domain.ErrNetwork)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: response content is empty", domain.ErrNetwork)
	}
	p.log.WithFields(logrus.Fields{"provider": p.name, "model": p.model, "bytes": len(content)}).
		Debug("completion received")
	return content, nil
}
