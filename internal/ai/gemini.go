package ai

import (
	"context"
	"errors"

	genai "google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY")
	}
	if model == "" {
		model = DefaultModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

// FromKey returns a Gemini model, or Noop when no key is set.
func FromKey(ctx context.Context, apiKey, model string) (Model, error) {
	if apiKey == "" {
		return Noop{}, nil
	}
	return NewGemini(ctx, apiKey, model)
}
