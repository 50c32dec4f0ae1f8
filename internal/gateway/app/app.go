package app

import (
	"context"
	"fmt"

	"ideaeval/internal/gateway/config"
	"ideaeval/internal/gateway/handler"
	"ideaeval/internal/gateway/server"
	"ideaeval/internal/gateway/session"
	"ideaeval/internal/llmclient"
)

type App struct {
	server   *server.Server
	sessions *session.Store
	gen      llmclient.Generator
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(context.Background(), cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	// Dependencies
	deps, err := newPipelineDeps(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	sessions := session.New(cfg.Session.Max, cfg.Session.TTL, deps.factory, nil)

	// Routing & Server
	h := handler.New(sessions, nil)
	srv := server.New(cfg.Port, server.NewRouter(h, cfg.CORSOrigins, nil))

	return &App{
		server:   srv,
		sessions: sessions,
		gen:      deps.gen,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.sessions.Close()
	if cerr := a.gen.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
