package llmclient

import (
	"context"
	"log"
	"time"
)

// Middleware decorates a Generator to inject cross-cutting concerns.
type Middleware func(Generator) Generator

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Generator, mws ...Middleware) Generator {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

type ctxKeyStage struct{}

// WithStage tags the context with the pipeline stage issuing the call.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ctxKeyStage{}, stage)
}

// StageFrom returns the stage tag, or "-" when none is set.
func StageFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyStage{}).(string); ok && v != "" {
		return v
	}
	return "-"
}

// WithLogging logs request size, latency and errors. Provide a custom logger
// or nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Generator) Generator {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Generator
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Generate(ctx context.Context, req Request) (*Response, error) {
	stage := StageFrom(ctx)
	l.log.Printf("LLM request (%s): model=%s %d bytes", stage, req.Model, req.Size())
	start := time.Now()
	resp, err := l.next.Generate(ctx, req)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", stage, err)
		return resp, err
	}
	parts := 0
	if resp != nil {
		parts = len(resp.Parts)
	}
	l.log.Printf("LLM response (%s): %d parts in %s", stage, parts, time.Since(start).Round(time.Millisecond))
	return resp, nil
}
