package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/custodyledger/internal/adapter/http"
	"github.com/iho/custodyledger/internal/adapter/http/handler"
	"github.com/iho/custodyledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/custodyledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/custodyledger/internal/adapter/repository/redis"
	"github.com/iho/custodyledger/internal/infrastructure/config"
	"github.com/iho/custodyledger/internal/infrastructure/eventpublisher"
	"github.com/iho/custodyledger/internal/infrastructure/logger"
	"github.com/iho/custodyledger/internal/infrastructure/metrics"
	"github.com/iho/custodyledger/internal/infrastructure/postgres"
	"github.com/iho/custodyledger/internal/infrastructure/redis"
	"github.com/iho/custodyledger/internal/infrastructure/scheduler"
	"github.com/iho/custodyledger/internal/scoring"
	"github.com/iho/custodyledger/internal/usecase"
)

const (
	serviceName = "custodyledger"

	rateLimitEvictEvery = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(loggerConfig(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, poolConfig(cfg))
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, redisConfig(cfg))
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New(prometheus.DefaultRegisterer)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	txRepo := postgresRepo.NewTransactionRepository(pool)
	creditRepo := postgresRepo.NewCreditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log).WithMaxRetries(cfg.LedgerMaxRetries)

	var outboxRepo usecase.OutboxRepository = postgresRepo.NewNullOutboxRepository()
	if cfg.OutboxEnabled {
		outboxRepo = postgresRepo.NewOutboxRepository(pool)
	}

	// Use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, txRepo, outboxRepo, idGen, log).WithMetrics(m)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txRepo, outboxRepo, retrier, idGen, log).WithMetrics(m)
	historyUC := usecase.NewTransactionUseCase(accountRepo, txRepo)
	reportUC := usecase.NewReportUseCase(txRepo).WithCache(redisRepo.NewCache(redisClient), cfg.SummaryCacheTTL)
	reconcileUC := usecase.NewReconciliationUseCase(accountRepo, txRepo)

	features := usecase.NewFeatureExtractor(accountRepo, txRepo)
	model := usecase.NewScoringModel(features, newTrainer, log).
		WithSnapshots(redisRepo.NewModelSnapshotStore(redisClient, redisRepo.DefaultModelSnapshotKey), cfg.ModelSnapshotTTL).
		WithMetrics(m)
	creditUC := usecase.NewCreditUseCase(txManager, creditRepo, outboxRepo, features, model, idGen, log).WithMetrics(m)

	if cfg.ModelWarmStart {
		restored, err := model.WarmStart(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("model warm start failed, training on first decision")
		} else {
			log.Info().Bool("restored", restored).Msg("model warm start")
		}
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC, historyUC, reconcileUC),
		TransactionHandler: handler.NewTransactionHandler(ledgerUC, historyUC),
		CreditHandler:      handler.NewCreditHandler(creditUC),
		ReportHandler:      handler.NewReportHandler(reportUC, reconcileUC),
		ModelHandler:       handler.NewModelHandler(model),
		HealthHandler: handler.NewHealthHandler(
			handler.PingerFunc(pool.Ping),
			handler.PingerFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
		),
		Logger:           log,
		Metrics:          m,
		Gatherer:         prometheus.DefaultGatherer,
		IdempotencyStore: redisRepo.NewIdempotencyStore(redisClient),
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.OutboxEnabled {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  eventpublisher.NewLogPublisher(log),
			Observer:   m,
			Logger:     log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		})
		g.Go(func() error {
			if err := publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if cfg.ModelRetrainSchedule != "" {
		retrain, err := scheduler.New(cfg.ModelRetrainSchedule, model, log)
		if err != nil {
			return err
		}
		retrain.Start()
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
			defer cancel()
			return retrain.Stop(stopCtx)
		})
	}

	if rateLimiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(rateLimitEvictEvery)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					rateLimiter.Evict(rateLimitEvictEvery)
				}
			}
		})
	}

	return g.Wait()
}

func newTrainer() usecase.Trainer {
	return scoring.NewLogisticRegression()
}

func loggerConfig(cfg *config.Config) logger.Config {
	return logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	}
}

func poolConfig(cfg *config.Config) postgres.PoolConfig {
	return postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	}
}

func redisConfig(cfg *config.Config) redis.Config {
	return redis.Config{
		URL:      cfg.RedisURL,
		PoolSize: cfg.RedisPoolSize,
	}
}
