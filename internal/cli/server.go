package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quiz-competition-service/internal/app"
	"quiz-competition-service/internal/config"
	"quiz-competition-service/internal/infra/memory"
	pgstore "quiz-competition-service/internal/infra/postgres"
	"quiz-competition-service/internal/infra/rabbitmq"
	rediscache "quiz-competition-service/internal/infra/redis"
	"quiz-competition-service/internal/infra/sqlite"
	transport "quiz-competition-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the competition server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	// The in-memory driver is its own cache.
	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	if redisClient != nil {
		store = rediscache.NewCachedStore(redisClient, store, cacheTTL, logger)
	} else if cfg.Store.Driver != config.DriverMemory {
		store = memory.NewCachedStore(store, cacheTTL)
	}

	playTTL := config.TTLDuration(cfg.Play.TTL, app.DefaultPlayTTL)
	var plays app.PlayRepository
	if redisClient != nil {
		plays = rediscache.NewPlayStore(redisClient, playTTL, logger)
	} else {
		plays = memory.NewPlayStore()
	}

	var publisher app.EventPublisher = app.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	}

	competitions := app.NewCompetitionService(store, publisher, logger)
	playService := app.NewPlayService(competitions, plays, config.TTLDuration(cfg.Play.ClearDelay, app.DefaultClearDelay), logger,
		app.WithPlayTTL(playTTL))

	handler := transport.NewRouter(competitions, playService, logger, transport.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: config.TTLDuration(cfg.Server.RequestTimeout, 30*time.Second),
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting competition service", "addr", server.Addr, "store", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return playService.RunSweeper(gctx, config.TTLDuration(cfg.Play.SweepInterval, time.Minute))
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore builds the configured document store and its cleanup.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (app.CompetitionStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewCompetitionStore(pool), pool.Close, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return memory.NewCompetitionStore(sampleCompetitions()...), func() {}, nil
	}
}
