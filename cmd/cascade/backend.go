package main

import (
	"context"
	"log/slog"

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/internal/cli"
	"github.com/aretw0/cascade/internal/config"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/session"
)

// openManager builds the backend and a session manager over it.
func openManager(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks domain.Hooks) (*cli.Backend, *session.Manager, error) {
	backend, err := cli.OpenBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	manager, err := session.NewManager(backend.Source,
		session.WithStore(backend.Store),
		session.WithLogger(logger),
		session.WithEngineOptions(cascade.WithLifecycleHooks(hooks)),
	)
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	return backend, manager, nil
}
