package router

import (
	"github.com/aerosimlabs/simgate/internal/application"
	"github.com/aerosimlabs/simgate/internal/container"
	pginfra "github.com/aerosimlabs/simgate/internal/infrastructure/postgres"
	handlers "github.com/aerosimlabs/simgate/internal/interface/http"
	"github.com/aerosimlabs/simgate/internal/router/modules"
)

// InitModules builds the dependency graph from the container singletons and
// registers all feature modules. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	repo := pginfra.NewAccountRepository(container.GetPGPool())
	svc := application.NewService(
		repo,
		container.GetJWT(),
		cfg,
		logger,
		container.GetRabbitPub(),
		container.GetES(),
		cfg.ESAccountsIndex,
	)
	artifacts := application.NewArtifactResolver(cfg, container.GetGCS(), logger)

	authHandler := handlers.NewAuthHandler(svc, artifacts, cfg, logger)
	adminHandler := handlers.NewAdminHandler(svc, logger)

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewAdminModule(adminHandler, container.GetJWT()))
}
