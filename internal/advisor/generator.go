package advisor

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Request is one text generation call. Zero sampling values leave the
// model defaults in place.
type Request struct {
	Model             string
	Prompt            string
	SystemInstruction string
	Temperature       float32
	TopP              float32
	TopK              float32
}

type Response struct {
	Text string
}

// Generator sends a prompt to a language model.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator creates a Gemini client. An empty apiKey lets the SDK
// read GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	if req.Model == "" {
		return Response{}, errors.New("missing model name")
	}
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), generateConfig(req))
	if err != nil {
		return Response{}, fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return Response{}, errors.New("empty response from model")
	}
	return Response{Text: text}, nil
}

func generateConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(req.Temperature)
	}
	if req.TopP > 0 {
		cfg.TopP = genai.Ptr(req.TopP)
	}
	if req.TopK > 0 {
		cfg.TopK = genai.Ptr(req.TopK)
	}
	return cfg
}
