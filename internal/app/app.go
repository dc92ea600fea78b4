package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/predictleague/prediction-league/external/kalshi"
	"github.com/predictleague/prediction-league/internal/config"
	"github.com/predictleague/prediction-league/internal/domain/achievement"
	"github.com/predictleague/prediction-league/internal/domain/league"
	"github.com/predictleague/prediction-league/internal/domain/market"
	"github.com/predictleague/prediction-league/internal/domain/prediction"
	"github.com/predictleague/prediction-league/internal/domain/scoring"
	"github.com/predictleague/prediction-league/internal/domain/user"
	"github.com/predictleague/prediction-league/internal/infrastructure/jobqueue"
	"github.com/predictleague/prediction-league/internal/infrastructure/repository/memory"
	"github.com/predictleague/prediction-league/internal/infrastructure/repository/postgres"
	"github.com/predictleague/prediction-league/internal/interfaces/httpapi"
	idgen "github.com/predictleague/prediction-league/internal/platform/id"
	"github.com/predictleague/prediction-league/internal/platform/logging"
	"github.com/predictleague/prediction-league/internal/platform/resilience"
	"github.com/predictleague/prediction-league/internal/usecase"
)

type repositories struct {
	users        user.Repository
	markets      market.Repository
	predictions  prediction.Repository
	leagues      league.Repository
	achievements achievement.Repository
	scoring      scoring.Repository
}

// NewHTTPServer assembles the full service. With a DB_URL it runs
// against Postgres; without one it falls back to the in-memory
// repositories so local and demo deployments need no database.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, closeDB, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	feed := kalshi.NewClient(kalshi.ClientConfig{
		BaseURL:    cfg.KalshiBaseURL,
		APIKey:     cfg.KalshiAPIKey,
		Timeout:    cfg.KalshiTimeout,
		MaxRetries: cfg.KalshiMaxRetries,
		PageLimit:  cfg.KalshiPageLimit,
		Categories: cfg.KalshiCategories,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.KalshiCircuitEnabled,
			FailureThreshold: cfg.KalshiCircuitFailureCount,
			OpenTimeout:      cfg.KalshiCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.KalshiCircuitHalfOpenMaxReq,
		},
	})

	userSvc := usecase.NewUserService(repos.users)
	achievementSvc := usecase.NewAchievementService(repos.achievements, repos.users, logger)
	scoringSvc := usecase.NewScoringService(repos.markets, repos.predictions, repos.users, repos.scoring, achievementSvc, scoring.DefaultConfig(), logger)
	predictionSvc := usecase.NewPredictionService(repos.predictions, repos.markets, repos.users, repos.achievements, userSvc, achievementSvc, idgen.NewRandomGenerator(), logger)
	leagueSvc := usecase.NewLeagueService(repos.leagues, repos.users, idgen.NewRandomGenerator())
	leaderboardSvc := usecase.NewLeaderboardService(repos.users, repos.leagues)
	marketSyncSvc := usecase.NewMarketSyncService(repos.markets, feed, scoringSvc, cfg.SweepWorkers, logger)

	var scheduler httpapi.JobScheduler
	if cfg.QStashEnabled {
		publisher := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
		scheduler = jobqueue.NewScheduler(publisher, logger)
	}

	handler := httpapi.NewHandler(
		userSvc,
		leagueSvc,
		predictionSvc,
		scoringSvc,
		leaderboardSvc,
		marketSyncSvc,
		achievementSvc,
		scheduler,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.ServiceToken, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, closeDB, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	if cfg.DBURL == "" {
		logger.Info("database not configured, using in-memory repositories")

		users := memory.NewUserRepository()
		markets := memory.NewMarketRepository()
		predictions := memory.NewPredictionRepository()
		leagues := memory.NewLeagueRepository()
		achievements := memory.NewAchievementRepository()

		return repositories{
			users:        users,
			markets:      markets,
			predictions:  predictions,
			leagues:      leagues,
			achievements: achievements,
			scoring:      memory.NewScoringRepository(users, markets, predictions, leagues, achievements),
		}, func() error { return nil }, nil
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("connect database: %w", err)
	}

	return repositories{
		users:        postgres.NewUserRepository(db),
		markets:      postgres.NewMarketRepository(db),
		predictions:  postgres.NewPredictionRepository(db),
		leagues:      postgres.NewLeagueRepository(db),
		achievements: postgres.NewAchievementRepository(db),
		scoring:      postgres.NewScoringRepository(db),
	}, closeFunc(db), nil
}

func closeFunc(db *sqlx.DB) func() error {
	return func() error {
		return db.Close()
	}
}
