package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/JesusVicken/brain-school/internal/domain"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini sends prompts through Google's generative language API.
type Gemini struct {
	client *genai.Client
	model  string
	log    logrus.FieldLogger
}

func NewGemini(ctx context.Context, apiKey, model string, log logrus.FieldLogger) (*Gemini, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, log: log}, nil
}

func (p *Gemini) Name() string { return "gemini" }

// Complete folds the system prompt into the user content; the generative
// language API takes a single text part here.
func (p *Gemini) Complete(ctx context.Context, system, user string) (string, error) {
	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(system+"\n\n"+user), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	raw := result.Text()
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty model reply", domain.ErrNetwork)
	}
	p.log.WithFields(logrus.Fields{"provider": "gemini", "model": p.model, "bytes": len(raw)}).
		Debug("completion received")
	return raw, nil
}
