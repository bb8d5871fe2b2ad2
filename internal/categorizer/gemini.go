package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"saldo/internal/core"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// contentGenerator is the slice of *genai.Models the categorizer needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiCategorizer asks a Gemini model for the label of a description.
type GeminiCategorizer struct {
	models contentGenerator
	model  string
	prompt string
}

// NewGeminiCategorizer creates a Gemini API client authenticated with apiKey.
func NewGeminiCategorizer(ctx context.Context, apiKey, model string) (*GeminiCategorizer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newGeminiCategorizer(client.Models, model), nil
}

func newGeminiCategorizer(models contentGenerator, model string) *GeminiCategorizer {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiCategorizer{models: models, model: model, prompt: SystemPrompt()}
}

// SystemPrompt lists the taxonomy and asks for the bare label.
func SystemPrompt() string {
	return "Classifique em: [" + strings.Join(core.TaxonomyLabels(), ", ") + "]. Responda APENAS a categoria."
}

func (g *GeminiCategorizer) Classify(ctx context.Context, description string) (core.Category, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: g.prompt}}},
		Temperature:       genai.Ptr[float32](0),
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(description), config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	answer := resp.Text()
	if strings.TrimSpace(answer) == "" {
		return "", errors.New("gemini: empty response from model")
	}
	cat, ok := Normalize(answer)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnrecognised, answer)
	}
	return cat, nil
}
