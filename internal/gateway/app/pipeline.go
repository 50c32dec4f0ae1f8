package app

import (
	"context"
	"fmt"
	"log"

	"ideaeval/internal/evaluation"
	"ideaeval/internal/gateway/config"
	"ideaeval/internal/gateway/session"
	"ideaeval/internal/llmclient"
	"ideaeval/internal/orchestrator"
	"ideaeval/internal/prompt"
)

// pipelineDeps is shared by every session; each session only owns its
// orchestrator state.
type pipelineDeps struct {
	gen     llmclient.Generator
	factory session.Factory
}

func newPipelineDeps(ctx context.Context, cfg *config.Config, logger *log.Logger) (*pipelineDeps, error) {
	gen, err := NewGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	advisor, err := evaluation.NewAdvisor()
	if err != nil {
		_ = gen.Close()
		return nil, err
	}
	prompts := prompt.NewBuilder(prompt.Options{
		EvaluationModel: cfg.LLM.EvaluationModel,
		ImageModel:      cfg.LLM.ImageModel,
		AspectRatio:     cfg.LLM.AspectRatio,
	})
	return &pipelineDeps{
		gen: gen,
		factory: func(id string) (*orchestrator.Orchestrator, error) {
			return orchestrator.New(orchestrator.Config{
				ID:           id,
				Generator:    gen,
				Prompts:      prompts,
				Advisor:      advisor,
				Logger:       logger,
				StageTimeout: cfg.StageTimeout,
			})
		},
	}, nil
}

// NewGenerator returns the logging-wrapped provider client, or the offline
// fake when cfg.Fake is set.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *log.Logger) (llmclient.Generator, error) {
	var inner llmclient.Generator
	if cfg.Fake {
		inner = llmclient.NewFakeClient()
	} else {
		cli, err := llmclient.NewGeminiClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		inner = cli
	}
	return llmclient.Wrap(inner, llmclient.WithLogging(logger)), nil
}
