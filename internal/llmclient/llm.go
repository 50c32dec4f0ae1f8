package llmclient

import (
	"context"
	"strings"

	"ideaeval/internal/schema"
)

// Generator is the single capability the pipeline needs from a model
// provider: send a request descriptor, get content parts back.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
	Close() error
}

// Request is a provider-neutral request descriptor.
// Builders produce requests that are reflect.DeepEqual for equal inputs.
type Request struct {
	Model             string
	SystemInstruction string
	Content           string
	// ResponseMIMEType asks for a serialized payload, e.g. "application/json".
	ResponseMIMEType string
	// Schema is the required shape of a structured response.
	Schema *schema.Node
	// AspectRatio is an image hint such as "16:9".
	AspectRatio        string
	ResponseModalities []string
}

// Response carries the first candidate's content.
type Response struct {
	// Text is the concatenation of all non-thought text parts.
	Text  string
	Parts []Part
}

// Part is one piece of candidate content.
type Part struct {
	Text       string
	InlineData *Blob
}

// Blob is inline binary data.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Size is a rough payload size for logging.
func (r Request) Size() int {
	return len(r.SystemInstruction) + len(r.Content)
}

// TextResponse builds a single-part text response.
func TextResponse(text string) *Response {
	return &Response{Text: text, Parts: []Part{{Text: text}}}
}

// ImageResponse builds a response with one inline image part.
func ImageResponse(mimeType string, data []byte) *Response {
	return &Response{Parts: []Part{{InlineData: &Blob{MIMEType: strings.TrimSpace(mimeType), Data: data}}}}
}
