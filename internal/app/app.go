package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dugoutlabs/ballclub/internal/config"
	"github.com/dugoutlabs/ballclub/internal/domain/player"
	"github.com/dugoutlabs/ballclub/internal/domain/team"
	"github.com/dugoutlabs/ballclub/internal/infrastructure/backend/authgw"
	"github.com/dugoutlabs/ballclub/internal/infrastructure/backend/datastore"
	"github.com/dugoutlabs/ballclub/internal/infrastructure/repository/memory"
	"github.com/dugoutlabs/ballclub/internal/interfaces/httpapi"
	"github.com/dugoutlabs/ballclub/internal/platform/logging"
	"github.com/dugoutlabs/ballclub/internal/platform/resilience"
	"github.com/dugoutlabs/ballclub/internal/platform/viewstate"
	"github.com/dugoutlabs/ballclub/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gateway, teamRepo, playerRepo, err := buildCollaborators(cfg, logger)
	if err != nil {
		return nil, err
	}

	teamSnapshots := viewstate.NewStore(cfg.SnapshotTTL, func(t team.Team) string { return t.ID })
	rosterSnapshots := viewstate.NewStore(cfg.SnapshotTTL, func(p player.Player) string { return p.ID })

	authSvc := usecase.NewAuthService(gateway, logger)
	teamSvc := usecase.NewTeamService(teamRepo, teamSnapshots, logger)
	rosterSvc := usecase.NewRosterService(teamRepo, playerRepo, rosterSnapshots, logger)
	refreshSvc := usecase.NewRefreshService(teamRepo, rosterSvc, logger)

	handler := httpapi.NewHandler(authSvc, teamSvc, rosterSvc, refreshSvc, logger, cfg.SessionCookieSecure)
	router := httpapi.NewRouter(handler, authSvc, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func buildCollaborators(cfg config.Config, logger *slog.Logger) (usecase.AuthGateway, team.Repository, player.Repository, error) {
	switch cfg.StorageMode {
	case config.StorageModeMemory:
		logger.Info("storage mode: in-memory with seed data")
		return memory.NewAuthGateway(),
			memory.NewTeamRepository(memory.SeedTeams()),
			memory.NewPlayerRepository(memory.SeedPlayers()),
			nil

	case config.StorageModeBackend:
		breakerCfg := resilience.CircuitBreakerConfig{
			Enabled:          cfg.BackendCircuitEnabled,
			FailureThreshold: cfg.BackendCircuitFailureCount,
			OpenTimeout:      cfg.BackendCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.BackendCircuitHalfOpenReq,
		}

		gateway := authgw.NewClient(authgw.ClientConfig{
			BaseURL:        cfg.BackendBaseURL,
			AnonKey:        cfg.BackendAnonKey,
			Timeout:        cfg.BackendTimeout,
			Logger:         logger,
			CircuitBreaker: breakerCfg,
		})

		dataClient := datastore.NewClient(datastore.ClientConfig{
			BaseURL:        cfg.BackendBaseURL,
			AnonKey:        cfg.BackendAnonKey,
			ServiceKey:     cfg.BackendServiceKey,
			Timeout:        cfg.BackendTimeout,
			Logger:         logging.Default(),
			CircuitBreaker: breakerCfg,
		})

		logger.Info("storage mode: hosted backend", "base_url", cfg.BackendBaseURL)
		return gateway,
			datastore.NewTeamRepository(dataClient),
			datastore.NewPlayerRepository(dataClient),
			nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported storage mode %q", cfg.StorageMode)
	}
}
