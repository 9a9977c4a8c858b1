package fx

import (
	"pokedex-tracker/internal/api"
	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/database"
	"pokedex-tracker/internal/enrich"
	"pokedex-tracker/internal/logger"
	"pokedex-tracker/internal/master"
	"pokedex-tracker/internal/pvp"
	"pokedex-tracker/internal/rankings"
	"pokedex-tracker/internal/repository"
	"pokedex-tracker/internal/scheduler"
	"pokedex-tracker/internal/server"
	"pokedex-tracker/internal/service"
	"pokedex-tracker/internal/storage"
	"pokedex-tracker/internal/teams"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// reference data
	fx.Provide(master.Load),
	fx.Provide(rankings.NewStore),
	fx.Provide(enrich.LoadAnimatedIndex),
	// repos + storage
	fx.Provide(repository.NewUploadRepository),
	fx.Provide(storage.NewStore),
	// api client
	fx.Provide(api.NewRankingsClient),
	// domain engines
	fx.Provide(enrich.NewPipeline),
	fx.Provide(pvp.NewMatcher),
	fx.Provide(teams.NewComposer),
	// svc
	fx.Provide(service.NewUploadService),
	fx.Provide(service.NewCollectionService),
	fx.Provide(service.NewRefreshService),
	// scheduler + server
	fx.Provide(scheduler.New),
	fx.Provide(server.New),
)
