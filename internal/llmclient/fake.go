package llmclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode"
)

// onePixelPNG is a valid 1x1 transparent PNG.
var onePixelPNG = mustDecode("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

func mustDecode(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// FakeClient returns deterministic payloads for offline runs and demos.
// Structured requests get an evaluation document; everything else gets a
// single inline PNG part.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &GatewayError{Model: req.Model, Err: err}
	}
	if req.Schema == nil && req.ResponseMIMEType == "" {
		return ImageResponse("image/png", onePixelPNG), nil
	}
	idea := strings.TrimSpace(req.Content)
	obj := map[string]any{
		"businessName":  fakeName(idea),
		"elevatorPitch": "An offline sample evaluation for: " + idea,
		"swot": map[string]any{
			"strengths":     []string{"Clear customer pain point"},
			"weaknesses":    []string{"Unproven demand"},
			"opportunities": []string{"Growing niche community"},
			"threats":       []string{"Low barriers to entry"},
		},
		"risks": map[string]any{
			"market":      map[string]any{"score": 5, "description": "Demand must be validated."},
			"financial":   map[string]any{"score": 4, "description": "Modest upfront capital."},
			"operational": map[string]any{"score": 6, "description": "Fulfilment is hands-on."},
			"competitive": map[string]any{"score": 7, "description": "Incumbents can copy quickly."},
		},
		"successRate":          55,
		"strategicSuggestions": []string{"Run a landing-page test before building"},
		"psychologicalAspects": map[string]any{
			"founderMindset":     "Expect a long validation phase.",
			"consumerPsychology": "Buyers respond to curation and novelty.",
		},
		"prototypePrompt": "product mockup for " + idea,
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return TextResponse(string(b)), nil
}

func fakeName(idea string) string {
	words := strings.Fields(idea)
	if len(words) > 3 {
		words = words[:3]
	}
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	if len(words) == 0 {
		return "Untitled Venture"
	}
	return strings.Join(words, " ") + " Co."
}
