// Package prompt turns an idea and a prior evaluation into the two request
// descriptors the pipeline sends to the model gateway.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"ideaeval/internal/evaluation"
	"ideaeval/internal/llmclient"
	"ideaeval/internal/schema"
)

var (
	// ErrEmptyInput is returned for an idea that is blank after trimming.
	ErrEmptyInput = errors.New("prompt: idea text is empty")
	// ErrEmptyPrototypePrompt is returned when a result carries no visual description.
	ErrEmptyPrototypePrompt = errors.New("prompt: prototype prompt is empty")
)

const (
	DefaultEvaluationModel = "gemini-2.5-flash"
	DefaultImageModel      = "gemini-2.5-flash-image"
	DefaultAspectRatio     = "16:9"
)

// Options selects models and the image shape.
type Options struct {
	EvaluationModel string
	ImageModel      string
	AspectRatio     string
}

func DefaultOptions() Options {
	return Options{
		EvaluationModel: DefaultEvaluationModel,
		ImageModel:      DefaultImageModel,
		AspectRatio:     DefaultAspectRatio,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if strings.TrimSpace(o.EvaluationModel) == "" {
		o.EvaluationModel = d.EvaluationModel
	}
	if strings.TrimSpace(o.ImageModel) == "" {
		o.ImageModel = d.ImageModel
	}
	if strings.TrimSpace(o.AspectRatio) == "" {
		o.AspectRatio = d.AspectRatio
	}
	return o
}

// Builder is immutable after construction; its methods are safe for
// concurrent use and have no side effects.
type Builder struct {
	opts        Options
	instruction string
}

// NewBuilder renders the fixed evaluation instruction once.
func NewBuilder(opts Options) *Builder {
	return &Builder{
		opts:        opts.withDefaults(),
		instruction: renderInstruction(evaluation.Contract),
	}
}

func (b *Builder) Options() Options { return b.opts }

// Instruction returns the system instruction shared by every evaluation request.
func (b *Builder) Instruction() string { return b.instruction }

// BuildEvaluation returns the first-stage request. The idea is sent
// verbatim as user content; only the emptiness check trims it.
func (b *Builder) BuildEvaluation(idea string) (llmclient.Request, error) {
	if strings.TrimSpace(idea) == "" {
		return llmclient.Request{}, ErrEmptyInput
	}
	return llmclient.Request{
		Model:             b.opts.EvaluationModel,
		SystemInstruction: b.instruction,
		Content:           idea,
		ResponseMIMEType:  "application/json",
		Schema:            evaluation.Contract,
	}, nil
}

// BuildPrototype returns the second-stage request. It reads nothing from
// the result except PrototypePrompt.
func (b *Builder) BuildPrototype(r *evaluation.Result) (llmclient.Request, error) {
	if r == nil || strings.TrimSpace(r.PrototypePrompt) == "" {
		return llmclient.Request{}, ErrEmptyPrototypePrompt
	}
	return llmclient.Request{
		Model:              b.opts.ImageModel,
		Content:            visualDescription(strings.TrimSpace(r.PrototypePrompt), b.opts.AspectRatio),
		AspectRatio:        b.opts.AspectRatio,
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}, nil
}

func visualDescription(subject, aspect string) string {
	return fmt.Sprintf(
		"Create a photorealistic 3D product render or a polished app interface mockup of: %s. "+
			"Studio lighting, clean background, high detail, %s aspect ratio. No text overlays.",
		subject, aspect)
}

var (
	purpose = "You are a seasoned venture analyst. Evaluate the startup idea given by the user " +
		"and return a complete business evaluation."
	criteria = []string{
		"Judge market demand, business model viability, execution difficulty and competition.",
		"Ground the SWOT analysis in the idea as described; do not invent unrelated features.",
		"Strategic suggestions must be concrete and actionable.",
		"The prototype prompt must describe a single product or app screen visually, suitable for an image generator.",
	}
	scoring = []string{
		"successRate is a percentage from 0 to 100.",
		"Each risk score is an integer from 1 to 10, where 1 is low risk and 10 is very high risk.",
	}
)

func renderInstruction(contract *schema.Node) string {
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", purpose)
	writeSection(&buf, "CRITERIA", formatList(criteria))
	writeSection(&buf, "SCORING", formatList(scoring))
	writeSection(&buf, "OUTPUT", formatFields(contract.Fields()))
	writeSection(&buf, "OUTPUT_FORMAT", "Return a single JSON object matching OUTPUT. Every required field must be present. No markdown, no commentary.")
	return strings.TrimSpace(buf.String()) + "\n"
}

func formatFields(fields []schema.Field) string {
	var buf strings.Builder
	for _, f := range fields {
		req := "optional"
		if f.Required {
			req = "required"
		}
		if f.Description != "" {
			fmt.Fprintf(&buf, "- %s (%s, %s): %s\n", f.Name, f.Type, req, f.Description)
		} else {
			fmt.Fprintf(&buf, "- %s (%s, %s)\n", f.Name, f.Type, req)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
