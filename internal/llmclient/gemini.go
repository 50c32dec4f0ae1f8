package llmclient

import (
	"context"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
// It only focuses on the API call itself. Cross-cutting concerns
// (logging, stage tagging) are applied via Middleware.
type GeminiClient struct {
	cli *genai.Client
}

// NewGeminiClient creates a Gemini API client. An empty apiKey lets genai
// fall back to GEMINI_API_KEY / GOOGLE_API_KEY from the environment.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if key := strings.TrimSpace(apiKey); key != "" {
		cfg.APIKey = key
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli}, nil
}

func (g *GeminiClient) Name() string { return "Gemini" }
func (g *GeminiClient) Close() error { return nil }

// Generate issues one GenerateContent call and converts the first candidate.
func (g *GeminiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, req.Model, genai.Text(req.Content), generateConfig(req))
	if err != nil {
		return nil, &GatewayError{Model: req.Model, Err: err}
	}
	return convertResponse(resp), nil
}

func generateConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if s := strings.TrimSpace(req.SystemInstruction); s != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: s}}}
	}
	if req.ResponseMIMEType != "" {
		cfg.ResponseMIMEType = req.ResponseMIMEType
	}
	if req.Schema != nil {
		cfg.ResponseSchema = toGenaiSchema(req.Schema)
	}
	if len(req.ResponseModalities) > 0 {
		cfg.ResponseModalities = append([]string(nil), req.ResponseModalities...)
	}
	if req.AspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: req.AspectRatio}
	}
	return cfg
}

func convertResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}
	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		part := Part{Text: p.Text}
		if p.InlineData != nil {
			part.InlineData = &Blob{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data}
		}
		text.WriteString(p.Text)
		out.Parts = append(out.Parts, part)
	}
	out.Text = text.String()
	return out
}
